package config

import (
	"testing"

	"github.com/btcprim/btcprim/chaincfg"
	"github.com/btcprim/btcprim/infrastructure/logger"
	"github.com/jessevdk/go-flags"
)

func TestResolveNetwork(t *testing.T) {
	tests := []struct {
		args    []string
		params  *chaincfg.Params
		wantErr bool
	}{
		{nil, &chaincfg.MainNetParams, false},
		{[]string{"--testnet"}, &chaincfg.TestNet3Params, false},
		{[]string{"--regtest"}, &chaincfg.RegressionNetParams, false},
		{[]string{"--testnet", "--regtest"}, nil, true},
	}
	for _, test := range tests {
		networkFlags := &NetworkFlags{}
		parser := flags.NewParser(networkFlags, flags.None)
		_, err := parser.ParseArgs(test.args)
		if err != nil {
			t.Fatalf("ParseArgs(%v): %v", test.args, err)
		}
		err = networkFlags.ResolveNetwork(nil)
		if test.wantErr {
			if err == nil {
				t.Errorf("ResolveNetwork(%v): unexpected success", test.args)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveNetwork(%v): %v", test.args, err)
			continue
		}
		if networkFlags.NetParams() != test.params {
			t.Errorf("ResolveNetwork(%v): got %s, want %s", test.args,
				networkFlags.NetParams().Name, test.params.Name)
		}
	}
}

func TestLogFlags(t *testing.T) {
	logFlags := DefaultLogFlags()
	parser := flags.NewParser(&logFlags, flags.None)
	_, err := parser.ParseArgs([]string{"--loglevel", "debug"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	err = logFlags.InitLog()
	if err != nil {
		t.Fatalf("InitLog: %v", err)
	}
	log, _ := logger.Get(logger.SubsystemTags.MRKL)
	if log.Level() != logger.LevelDebug {
		t.Errorf("InitLog: MRKL level is %s, want %s", log.Level(), logger.LevelDebug)
	}

	logFlags.LogLevel = "verbose"
	if err := logFlags.InitLog(); err == nil {
		t.Errorf("InitLog with an unknown level: unexpected success")
	}
	logFlags.LogLevel = "off"
	if err := logFlags.InitLog(); err != nil {
		t.Errorf("InitLog: %v", err)
	}
}
