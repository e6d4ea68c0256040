package main

import (
	"os"
	"path/filepath"
	"testing"

	"skabillium/memo/cmd/db"
)

func TestStringifyRequest(t *testing.T) {
	req := []string{"dlpush", "log", "hello world!", "body"}
	if str := StringifyRequest(req); str != "dlpush log \"hello world!\" body" {
		t.Error("Expected other result for StringifyRequest")
	}
}

func TestServerOptionsDefaults(t *testing.T) {
	options, err := getServerOptions(nil)
	if err != nil {
		t.Fatal(err)
	}
	if *options != *defaultServerOptions() {
		t.Errorf("Expected defaults, got %+v", options)
	}
}

func TestServerOptionsFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.yaml")
	config := "port: \"7000\"\nauth: false\nlinkage: singly\nlog_level: debug\nhttp_port: \"off\"\n"
	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	options, err := getServerOptions([]string{"-config", path, "-p", "7001", "-pwd", "secret"})
	if err != nil {
		t.Fatal(err)
	}

	if options.Port != "7001" {
		t.Errorf("Expected flag to override port, got %s", options.Port)
	}
	if options.AuthEnabled {
		t.Error("Expected auth to be disabled by the config file")
	}
	if options.Password != "secret" || options.User != DefaultUser {
		t.Errorf("Unexpected credentials %s/%s", options.User, options.Password)
	}
	if options.HTTPPort != "" {
		t.Error("Expected the HTTP API to be disabled")
	}
	if linkage, _ := options.DiaryLinkage(); linkage != db.Singly {
		t.Error("Expected singly linked diaries")
	}

	options, err = getServerOptions([]string{"-config", path, "-noauth=false"})
	if err != nil {
		t.Fatal(err)
	}
	if !options.AuthEnabled {
		t.Error("Expected an explicit -noauth=false to enable auth")
	}
}

func TestServerOptionsInvalid(t *testing.T) {
	for _, args := range [][]string{
		{"-linkage", "circular"},
		{"-log-level", "loud"},
		{"-log-format", "xml"},
		{"-http-rate", "-1"},
		{"-http-rate", "5", "-http-burst", "0"},
		{"-config", filepath.Join(t.TempDir(), "missing.yaml")},
	} {
		if _, err := getServerOptions(args); err == nil {
			t.Errorf("Expected %v to be rejected", args)
		}
	}
}
