package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRootCmd_HasExpectedSubcommands(t *testing.T) {
	rootCmd := createRootCmd()

	expected := []string{"login", "logout", "divisions", "transactions", "version"}
	var got []string
	for _, sub := range rootCmd.Commands() {
		got = append(got, sub.Name())
	}

	for _, name := range expected {
		assert.Contains(t, got, name)
	}
}

func TestVersionCmd_Output(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	cmd.Run(cmd, nil)

	assert.Contains(t, out.String(), "Exactly version:")
	assert.Contains(t, out.String(), "Go version:")
}

func TestTransactionsCmd_RequiresDivision(t *testing.T) {
	cmd := transactionsCmd()

	flag := cmd.Flags().Lookup("division")
	require.NotNil(t, flag)
	assert.Equal(t, []string{"true"}, flag.Annotations["cobra_annotation_bash_completion_one_required_flag"])
}

func TestTransactionsCmd_DefaultFlags(t *testing.T) {
	cmd := transactionsCmd()

	assert.Equal(t, "transactions.json", cmd.Flags().Lookup("output").DefValue)
	assert.Equal(t, "json", cmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "false", cmd.Flags().Lookup("partial").DefValue)
}

func TestDivisionsCmd_CachedFlag(t *testing.T) {
	cmd := divisionsCmd()

	flag := cmd.Flags().Lookup("cached")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
