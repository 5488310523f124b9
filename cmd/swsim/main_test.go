package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindPersistentFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "swsim"}
	var dir string
	cmd.PersistentFlags().StringVar(&dir, "data", ".swsim", "data directory")

	v := viper.New()
	require.NoError(t, bindPersistentFlags(v, cmd, "data"))
	assert.Equal(t, ".swsim", v.GetString("data"))

	require.NoError(t, cmd.PersistentFlags().Set("data", "/tmp/runs"))
	assert.Equal(t, "/tmp/runs", v.GetString("data"))

	err := bindPersistentFlags(viper.New(), cmd, "data", "log-level")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log-level")
}
