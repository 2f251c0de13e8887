package cmd

import (
	"testing"
)

func TestRootCommandRegistersAllSubcommands(t *testing.T) {
	want := []string{"convert", "rate", "serve", "warm-cache", "clear-cache", "version"}
	got := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("rootCmd is missing subcommand %q", name)
		}
	}
}

func TestVersionCommandRunsWithoutError(t *testing.T) {
	// Run prints via fmt.Println rather than cmd.OutOrStdout, so this only
	// proves it doesn't panic; the printed text isn't asserted.
	versionCmd.Run(versionCmd, nil)
}

func TestConvertCommandRequiresAtLeastOneArg(t *testing.T) {
	if err := convertCmd.Args(convertCmd, nil); err == nil {
		t.Error("expected an error when convert is called with no arguments")
	}
	if err := convertCmd.Args(convertCmd, []string{"10", "feet"}); err != nil {
		t.Errorf("expected multi-word args to be accepted, got: %v", err)
	}
}

func TestRateCommandRequiresExactlyTwoArgs(t *testing.T) {
	if err := rateCmd.Args(rateCmd, []string{"USD"}); err == nil {
		t.Error("expected an error for a single argument")
	}
	if err := rateCmd.Args(rateCmd, []string{"USD", "EUR", "GBP"}); err == nil {
		t.Error("expected an error for three arguments")
	}
	if err := rateCmd.Args(rateCmd, []string{"USD", "EUR"}); err != nil {
		t.Errorf("expected exactly two arguments to be accepted, got: %v", err)
	}
}

func TestConvertCommandFlagDefaults(t *testing.T) {
	flag12hr := convertCmd.Flags().Lookup("12hr")
	if flag12hr == nil {
		t.Fatal("expected a --12hr flag")
	}
	if flag12hr.DefValue != "true" {
		t.Errorf("--12hr default = %q, want true", flag12hr.DefValue)
	}

	flagCurrency := convertCmd.Flags().Lookup("currency")
	if flagCurrency == nil || flagCurrency.DefValue != "" {
		t.Error("expected an empty-default --currency flag")
	}
}

func TestServeCommandAddrFlagDefault(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	if flag == nil {
		t.Fatal("expected an --addr flag")
	}
	if flag.DefValue != ":8080" {
		t.Errorf("--addr default = %q, want :8080", flag.DefValue)
	}
}
