package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())
	assert.NotNil(t, serve.Flags().Lookup("skip-migrations"))

	for _, name := range []string{"up", "down", "status"} {
		sub, _, err := root.Find([]string{"migrate", name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestMigrateDownRejectsBadSteps(t *testing.T) {
	for _, arg := range []string{"zero", "0", "-2"} {
		root := newRootCmd()
		root.SetArgs([]string{"migrate", "down", "--", arg})
		root.SilenceErrors = true

		err := root.Execute()
		require.Error(t, err, arg)
		assert.Contains(t, err.Error(), "steps must be a positive integer")
	}
}
