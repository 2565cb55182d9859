package main

import "testing"

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	if rootCmd.Use != appName {
		t.Fatalf("root use = %q, want %q", rootCmd.Use, appName)
	}
	for _, name := range []string{"serve", "migrate", "recompute", "seed"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Fatalf("subcommand %s not registered: %v", name, err)
		}
	}
	for _, flag := range []string{"config", "debug", "json"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("missing persistent flag --%s", flag)
		}
	}
}
