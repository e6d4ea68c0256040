package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"skabillium/memo/cmd/db"
)

type ServerOptions struct {
	Port           string  `yaml:"port"`
	HTTPPort       string  `yaml:"http_port"`
	HTTPRate       float64 `yaml:"http_rate"`
	HTTPBurst      int     `yaml:"http_burst"`
	AuthEnabled    bool    `yaml:"auth"`
	User           string  `yaml:"user"`
	Password       string  `yaml:"password"`
	JournalEnabled bool    `yaml:"journal"`
	JournalPath    string  `yaml:"journal_path"`
	LogLevel       string  `yaml:"log_level"`
	LogFormat      string  `yaml:"log_format"`
	Linkage        string  `yaml:"linkage"`
}

func defaultServerOptions() *ServerOptions {
	return &ServerOptions{
		Port:        DefaultPort,
		HTTPPort:    DefaultHTTPPort,
		HTTPRate:    20,
		HTTPBurst:   40,
		AuthEnabled: true,
		User:        DefaultUser,
		Password:    DefaultPassword,
		JournalPath: DefaultJournalPath,
		LogLevel:    "info",
		LogFormat:   "text",
		Linkage:     "doubly",
	}
}

// Read command line options. Values from the YAML file given with -config are
// applied first, explicitly set flags override them.
func getServerOptions(args []string) (*ServerOptions, error) {
	var (
		configPath  string
		port        string
		portSr      string
		httpPort    string
		httpRate    float64
		httpBurst   int
		disableAuth bool
		enableJrnl  bool
		journalPath string
		user        string
		userSr      string
		password    string
		passwordSr  string
		logLevel    string
		logFormat   string
		linkage     string
	)

	fs := flag.NewFlagSet("memo", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&port, "port", "", "Port to run server")
	fs.StringVar(&portSr, "p", "", "Shorthand for port")
	fs.StringVar(&httpPort, "http-port", "", "Port for the HTTP API, 'off' to disable")
	fs.Float64Var(&httpRate, "http-rate", 0, "Requests per second allowed per HTTP client, 0 to disable")
	fs.IntVar(&httpBurst, "http-burst", 0, "Burst size for HTTP rate limiting")
	fs.BoolVar(&disableAuth, "noauth", false, "Disable authentication")
	fs.BoolVar(&enableJrnl, "journal", false, "Enable the operations journal")
	fs.StringVar(&journalPath, "journal-path", "", "Operations journal file")
	fs.StringVar(&user, "user", "", "User for authentication")
	fs.StringVar(&userSr, "u", "", "Shorthand for user")
	fs.StringVar(&password, "password", "", "Password for authentication")
	fs.StringVar(&passwordSr, "pwd", "", "Shorthand for password")
	fs.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	fs.StringVar(&linkage, "linkage", "", "Linkage of new diaries: doubly or singly")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	options := defaultServerOptions()
	if configPath != "" {
		if err := options.loadFile(configPath); err != nil {
			return nil, err
		}
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if v := firstNonEmpty(port, portSr); v != "" {
		options.Port = v
	}
	if httpPort != "" {
		options.HTTPPort = httpPort
	}
	if options.HTTPPort == "off" {
		options.HTTPPort = ""
	}
	if set["http-rate"] {
		options.HTTPRate = httpRate
	}
	if set["http-burst"] {
		options.HTTPBurst = httpBurst
	}
	if set["noauth"] {
		options.AuthEnabled = !disableAuth
	}
	if set["journal"] {
		options.JournalEnabled = enableJrnl
	}
	if journalPath != "" {
		options.JournalPath = journalPath
	}
	if v := firstNonEmpty(user, userSr); v != "" {
		options.User = v
	}
	if v := firstNonEmpty(password, passwordSr); v != "" {
		options.Password = v
	}
	if logLevel != "" {
		options.LogLevel = logLevel
	}
	if logFormat != "" {
		options.LogFormat = logFormat
	}
	if linkage != "" {
		options.Linkage = linkage
	}

	return options, options.validate()
}

func (o *ServerOptions) loadFile(path string) error {
	if !FileExists(path) {
		return fmt.Errorf("config file '%s' does not exist", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return fmt.Errorf("parse config file '%s': %w", path, err)
	}
	return nil
}

func (o *ServerOptions) validate() error {
	if o.Port == "" {
		return errors.New("port must not be empty")
	}
	if o.HTTPRate < 0 || o.HTTPBurst < 0 {
		return errors.New("http rate and burst must not be negative")
	}
	if o.HTTPRate > 0 && o.HTTPBurst == 0 {
		return errors.New("http burst must be positive when rate limiting is enabled")
	}
	if _, err := o.DiaryLinkage(); err != nil {
		return err
	}
	if _, err := parseLogLevel(o.LogLevel); err != nil {
		return err
	}
	if o.LogFormat != "text" && o.LogFormat != "json" {
		return fmt.Errorf("unknown log format '%s'", o.LogFormat)
	}
	return nil
}

func (o *ServerOptions) DiaryLinkage() (db.Linkage, error) {
	switch strings.ToLower(o.Linkage) {
	case "doubly", "":
		return db.Doubly, nil
	case "singly":
		return db.Singly, nil
	}
	return db.Doubly, fmt.Errorf("unknown linkage '%s'", o.Linkage)
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level '%s'", level)
}

func newLogger(w io.Writer, options *ServerOptions) *slog.Logger {
	level, _ := parseLogLevel(options.LogLevel)
	handlerOptions := &slog.HandlerOptions{Level: level}
	if options.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOptions))
	}
	return slog.New(slog.NewTextHandler(w, handlerOptions))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Convert a request to a single printable line
func StringifyRequest(args []string) string {
	var exec string
	for i, s := range args {
		if i != 0 {
			exec += " "
		}

		if strings.ContainsAny(s, " \t\n") {
			s = "\"" + s + "\""
		}

		exec += s
	}

	return exec
}

// Check if a given file path exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !errors.Is(err, os.ErrNotExist)
}
