package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/tvo/listkeeper/internal/app"
	"github.com/tvo/listkeeper/internal/auth"
	"github.com/tvo/listkeeper/internal/credential"
	"github.com/tvo/listkeeper/internal/mailer"
	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
	"github.com/tvo/listkeeper/internal/usercache"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "listkeeper:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// The TUI owns stdout, so logs go to a file.
	logPath := os.Getenv("LISTKEEPER_LOG")
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(configPath), "listkeeper.log")
	}
	logFile, err := tea.LogToFile(logPath, "listkeeper")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	s, err := store.NewSQLiteStore(cfg.Database.Path, cfg.Lists.DeleteMode)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	secret, err := tokenSecret()
	if err != nil {
		return err
	}

	smtpPassword, err := credential.Get(credential.KeySMTPPassword)
	if err != nil {
		log.Printf("no SMTP password in keyring, emails will fail: %v", err)
	}
	m := mailer.NewSMTPMailer(
		cfg.Mail.Host, cfg.Mail.Port,
		cfg.Mail.Username, smtpPassword,
		cfg.Mail.From, cfg.Mail.TLS,
	)

	users := usercache.New(s)
	service, err := auth.NewService(s, users, m, secret, cfg.Registration.Open)
	if err != nil {
		return fmt.Errorf("building auth service: %w", err)
	}

	program := tea.NewProgram(app.New(s, users, service), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// tokenSecret loads the signing secret from the keyring, minting and
// storing one on first run.
func tokenSecret() ([]byte, error) {
	secret, err := credential.Get(credential.KeyTokenSecret)
	if err == nil && secret != "" {
		return []byte(secret), nil
	}

	secret = uuid.New().String()
	if err := credential.Set(credential.KeyTokenSecret, secret); err != nil {
		return nil, fmt.Errorf("storing token secret: %w", err)
	}
	return []byte(secret), nil
}
