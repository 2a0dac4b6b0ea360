package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	calls      []string
	versionErr error
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	return nil
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return 1, false, f.versionErr
}

func TestRunMigration(t *testing.T) {
	for _, cmd := range []string{"up", "down", "version"} {
		t.Run(cmd, func(t *testing.T) {
			m := &fakeMigrator{}
			require.NoError(t, runMigration(cmd, m))
			assert.Equal(t, []string{cmd}, m.calls)
		})
	}
}

func TestRunMigration_UnknownCommand(t *testing.T) {
	m := &fakeMigrator{}
	err := runMigration("sideways", m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
	assert.Empty(t, m.calls)
}

func TestRunMigration_PropagatesErrors(t *testing.T) {
	cause := errors.New("dirty database")
	m := &fakeMigrator{versionErr: cause}
	assert.ErrorIs(t, runMigration("version", m), cause)
}

func TestMigrate_RequiresDSN(t *testing.T) {
	assert.Error(t, migrate("up", ""))
}
