package main

import (
	"os"
	"path/filepath"

	"github.com/groundwork-cli/groundwork/internal/domain/phase"
	"github.com/groundwork-cli/groundwork/internal/ports"
	"github.com/groundwork-cli/groundwork/internal/steps/apt"
	"github.com/groundwork-cli/groundwork/internal/steps/desktop"
	"github.com/groundwork-cli/groundwork/internal/steps/docker"
	"github.com/groundwork-cli/groundwork/internal/steps/dotfiles"
	"github.com/groundwork-cli/groundwork/internal/steps/lvm"
	"github.com/groundwork-cli/groundwork/internal/steps/shellcfg"
)

// Phase identifiers. The numeric prefix fixes execution order; gaps
// leave room for future phases without renumbering.
const (
	phaseCore    = "00-core"
	phaseLVM     = "01-lvm"
	phaseDesktop = "03-desktop"
	phaseApps    = "04-apps"
	phaseTweaks  = "05-tweaks"
)

// buildRegistry declares every phase and step, in execution order. This
// is the single authoritative catalog: no directory scanning, no naming
// conventions.
func buildRegistry(runner ports.CommandRunner) (*phase.Registry, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/root"
	}
	dotfilesDir := filepath.Join(home, ".dotfiles")

	registry := phase.NewRegistry()

	if err := registry.Register(phase.MustParse(phaseCore),
		apt.NewUpdateStep(phaseCore, runner),
		apt.NewPackageStep(phaseCore, apt.Package{Name: "git", Required: true}, runner),
		apt.NewPackageStep(phaseCore, apt.Package{Name: "curl", Required: true}, runner),
		apt.NewPackageStep(phaseCore, apt.Package{Name: "build-essential", Required: true}, runner),
		apt.NewPackageStep(phaseCore, apt.Package{Name: "htop"}, runner),
	); err != nil {
		return nil, err
	}

	if err := registry.Register(phase.MustParse(phaseLVM),
		lvm.NewVolumeStep(phaseLVM, lvm.Volume{
			Group: "vg0", Name: "data", Size: "100G", Filesystem: "ext4",
		}, runner),
		lvm.NewMountStep(phaseLVM, "/dev/vg0/data", "/data", runner),
	); err != nil {
		return nil, err
	}

	if err := registry.Register(phase.MustParse(phaseDesktop),
		desktop.NewGSettingsStep(phaseDesktop,
			"org.gnome.desktop.interface", "color-scheme", "'prefer-dark'", runner),
		desktop.NewGSettingsStep(phaseDesktop,
			"org.gnome.desktop.interface", "clock-show-seconds", "true", runner),
		desktop.NewEntryStep(phaseDesktop,
			filepath.Join(home, ".local", "share", "applications", "groundwork.desktop"),
			desktop.Entry{
				Name:       "Groundwork",
				Exec:       "groundwork status",
				Icon:       "utilities-terminal",
				Categories: "System;",
				Terminal:   true,
			}),
	); err != nil {
		return nil, err
	}

	if err := registry.Register(phase.MustParse(phaseApps),
		apt.NewPackageStep(phaseApps, apt.Package{Name: "docker.io"}, runner),
		docker.NewDaemonConfigStep(phaseApps, "/etc/docker/daemon.json", "/data/docker", runner),
		docker.NewRestartStep(phaseApps, "docker.service", runner),
	); err != nil {
		return nil, err
	}

	if err := registry.Register(phase.MustParse(phaseTweaks),
		dotfiles.NewSymlinkStep(phaseTweaks,
			filepath.Join(dotfilesDir, "gitconfig"), filepath.Join(home, ".gitconfig")),
		dotfiles.NewSymlinkStep(phaseTweaks,
			filepath.Join(dotfilesDir, "zshrc"), filepath.Join(home, ".zshrc")),
		shellcfg.NewPromptStep(phaseTweaks,
			filepath.Join(home, ".config", "starship.toml"),
			shellcfg.PromptConfig{AddNewline: true, Palette: "catppuccin_mocha"}),
	); err != nil {
		return nil, err
	}

	return registry, nil
}
