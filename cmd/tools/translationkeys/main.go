// cmd/tools/translationkeys/main.go
//
// translationkeys lists the keys of a locale file and, with -compare,
// reports keys another locale file lacks.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/vaxxnz/vaxx-web/internal/i18n"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("translationkeys", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		file    = flags.String("file", "internal/i18n/locales/en-NZ/common.json", "Locale file whose keys are listed")
		compare = flags.String("compare", "", "Locale file to check for keys missing from -file")
	)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	keys, err := keysFromFile(*file)
	if err != nil {
		fmt.Fprintf(stderr, "translationkeys: %v\n", err)
		return 1
	}

	if *compare == "" {
		for _, key := range keys {
			fmt.Fprintln(stdout, key)
		}
		return 0
	}

	other, err := keysFromFile(*compare)
	if err != nil {
		fmt.Fprintf(stderr, "translationkeys: %v\n", err)
		return 1
	}
	missing := i18n.MissingKeys(keys, other)
	for _, key := range missing {
		fmt.Fprintln(stdout, key)
	}
	fmt.Fprintf(stderr, "%d of %d keys missing from %s\n", len(missing), len(keys), *compare)
	if len(missing) > 0 {
		return 1
	}
	return 0
}

func keysFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	keys, err := i18n.CollectKeysFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return keys, nil
}
