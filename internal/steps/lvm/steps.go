// Package lvm provides steps for logical volume provisioning. Failures
// here are fatal: later phases assume the storage layout exists.
package lvm

import (
	"fmt"
	"os"
	"strings"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
	"github.com/groundwork-cli/groundwork/internal/ports"
	"github.com/groundwork-cli/groundwork/internal/validation"
)

// Volume describes one logical volume to create and format.
type Volume struct {
	Group      string // volume group, e.g. "vg0"
	Name       string // logical volume name, e.g. "home"
	Size       string // lvcreate -L argument, e.g. "100G"
	Filesystem string // mkfs -t argument, e.g. "ext4"
}

// DevicePath returns the mapped device path for the volume.
func (v Volume) DevicePath() string {
	return fmt.Sprintf("/dev/%s/%s", v.Group, v.Name)
}

// VolumeStep creates and formats a logical volume.
type VolumeStep struct {
	phase  string
	vol    Volume
	id     step.ID
	runner ports.CommandRunner
}

// NewVolumeStep creates a new VolumeStep in the given phase.
func NewVolumeStep(phase string, vol Volume, runner ports.CommandRunner) *VolumeStep {
	return &VolumeStep{
		phase:  phase,
		vol:    vol,
		id:     step.MustNewID(fmt.Sprintf("%s:lvm:create-%s-%s", phase, vol.Group, vol.Name)),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *VolumeStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *VolumeStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *VolumeStep) Label() string {
	return fmt.Sprintf("Create logical volume %s/%s (%s)", s.vol.Group, s.vol.Name, s.vol.Size)
}

// Check probes lvs for the volume.
func (s *VolumeStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "sudo", "lvs", "--noheadings", s.vol.Group+"/"+s.vol.Name)
	if err != nil {
		return step.StatusUnknown, err
	}
	if result.Success() {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsRun, nil
}

// Run creates and formats the volume. Formatting an already-created but
// unformatted volume is safe to repeat after an interrupt; formatting a
// live volume is not, which is why Check must win over the marker.
func (s *VolumeStep) Run(ctx step.RunContext) error {
	if err := validation.ValidateVolumeName(s.vol.Group); err != nil {
		return step.Fatal(err)
	}
	if err := validation.ValidateVolumeName(s.vol.Name); err != nil {
		return step.Fatal(err)
	}

	result, err := s.runner.Run(ctx.Context(), "sudo", "lvcreate", "-L", s.vol.Size, "-n", s.vol.Name, s.vol.Group)
	if err != nil {
		return step.Fatalf("lvcreate is required but could not be invoked: %v", err)
	}
	if !result.Success() {
		return step.Fatalf("lvcreate %s/%s failed: %s", s.vol.Group, s.vol.Name, strings.TrimSpace(result.Stderr))
	}

	result, err = s.runner.Run(ctx.Context(), "sudo", "mkfs", "-t", s.vol.Filesystem, s.vol.DevicePath())
	if err != nil {
		return step.Fatalf("mkfs is required but could not be invoked: %v", err)
	}
	if !result.Success() {
		return step.Fatalf("mkfs %s failed: %s", s.vol.DevicePath(), strings.TrimSpace(result.Stderr))
	}
	return nil
}

// MountStep mounts a device on a mount point.
type MountStep struct {
	phase      string
	device     string
	mountPoint string
	id         step.ID
	runner     ports.CommandRunner
	mountsFile string
}

// NewMountStep creates a new MountStep in the given phase.
func NewMountStep(phase, device, mountPoint string, runner ports.CommandRunner) *MountStep {
	sanitized := strings.Trim(strings.ReplaceAll(mountPoint, "/", "-"), "-")
	return &MountStep{
		phase:      phase,
		device:     device,
		mountPoint: mountPoint,
		id:         step.MustNewID(phase + ":lvm:mount-" + sanitized),
		runner:     runner,
		mountsFile: "/proc/mounts",
	}
}

// WithMountsFile overrides the mount table location, for tests.
func (s *MountStep) WithMountsFile(path string) *MountStep {
	s.mountsFile = path
	return s
}

// ID returns the step identifier.
func (s *MountStep) ID() step.ID {
	return s.id
}

// Phase returns the owning phase identifier.
func (s *MountStep) Phase() string {
	return s.phase
}

// Label returns the human-readable description.
func (s *MountStep) Label() string {
	return fmt.Sprintf("Mount %s on %s", s.device, s.mountPoint)
}

// Check scans the live mount table. This tolerates an operator who
// mounted or unmounted by hand between runs, regardless of what the
// marker says.
func (s *MountStep) Check(_ step.RunContext) (step.Status, error) {
	data, err := os.ReadFile(s.mountsFile)
	if err != nil {
		return step.StatusUnknown, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == s.mountPoint {
			return step.StatusSatisfied, nil
		}
	}
	return step.StatusNeedsRun, nil
}

// Run creates the mount point and mounts the device.
func (s *MountStep) Run(ctx step.RunContext) error {
	if err := validation.ValidatePath(s.mountPoint); err != nil {
		return step.Fatal(err)
	}

	result, err := s.runner.Run(ctx.Context(), "sudo", "mkdir", "-p", s.mountPoint)
	if err != nil {
		return step.Fatalf("mkdir could not be invoked: %v", err)
	}
	if !result.Success() {
		return step.Fatalf("mkdir -p %s failed: %s", s.mountPoint, strings.TrimSpace(result.Stderr))
	}

	result, err = s.runner.Run(ctx.Context(), "sudo", "mount", s.device, s.mountPoint)
	if err != nil {
		return step.Fatalf("mount could not be invoked: %v", err)
	}
	if !result.Success() {
		return step.Fatalf("mount %s %s failed: %s", s.device, s.mountPoint, strings.TrimSpace(result.Stderr))
	}
	return nil
}
