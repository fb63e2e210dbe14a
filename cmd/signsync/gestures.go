package main

import (
	"fmt"
	"sort"

	"github.com/samber/do"
	"github.com/spf13/cobra"

	"github.com/ayusman/signsync/internal/gesture"
	"github.com/ayusman/signsync/internal/store"
)

func runGesturesCmd(cmd *cobra.Command, args []string) error {
	names := make([]string, 0, gesture.VocabularySize())
	for _, l := range gesture.Vocabulary() {
		names = append(names, string(l))
	}

	if gesturesCaptured {
		cfg, closeLog, err := loadConfig()
		if err != nil {
			return err
		}
		defer closeLog()

		di := newInjector(cfg)
		defer di.Shutdown()

		st, err := do.Invoke[*store.Store](di)
		if err != nil {
			return err
		}
		captured, err := st.Samples().Labels()
		if err != nil {
			return err
		}
		names = mergeLabels(names, captured)
	}

	out := cmd.OutOrStdout()
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

// mergeLabels returns the sorted union of two label lists.
func mergeLabels(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				merged = append(merged, n)
			}
		}
	}
	sort.Strings(merged)
	return merged
}
