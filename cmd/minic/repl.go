package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	minic "github.com/minicgo/minic"
)

// runREPL compiles one snippet per line and prints its assembly.
// Bare expressions and statements are wrapped into a main function;
// a line starting with "int " is taken as a full translation unit.
func runREPL() {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	for {
		input, err := state.Prompt("minic> ")
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Println()
				continue
			case errors.Is(err, io.EOF):
				fmt.Println()
				return
			default:
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}
		src := strings.TrimSpace(input)
		if src == "" {
			continue
		}
		state.AppendHistory(src)

		asm, err := minic.Compile("<repl>", wrapSnippet(src))
		if err != nil {
			fmt.Fprintf(os.Stderr, "minic: %v\n", err)
			continue
		}
		fmt.Print(asm)
	}
}

func wrapSnippet(src string) string {
	if strings.HasPrefix(src, "int ") && strings.Contains(src, "{") {
		return src
	}
	if !strings.Contains(src, ";") {
		src = "return " + src + ";"
	}
	return "int main() { " + src + " }"
}

func replHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".minic_history")
}
