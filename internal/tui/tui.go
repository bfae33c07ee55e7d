package tui

import (
	"go.uber.org/zap"

	"teamdeck/internal/api"

	tea "github.com/charmbracelet/bubbletea"
)

type Config struct {
	Client      *api.Client
	ChannelsDir string
	Log         *zap.Logger
}

func Run(cfg Config) error {
	applyColorProfilePreference()
	applyThemePreference()

	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	m, err := newAppModel(cfg)
	if err != nil {
		return err
	}
	defer m.cleanup()

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
