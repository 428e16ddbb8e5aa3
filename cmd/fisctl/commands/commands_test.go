package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/auth"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/repository"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintToken(t *testing.T) {
	token, err := mintToken("s3cret", "fis-inscriptions", "user_9", "admin", time.Hour)
	require.NoError(t, err)

	p, err := auth.NewIssuer("s3cret", "fis-inscriptions", time.Hour).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user_9", p.UserID)
	assert.Equal(t, auth.RoleAdmin, p.Role)

	_, err = mintToken("s3cret", "fis-inscriptions", "user_9", "root", time.Hour)
	assert.Error(t, err)
	_, err = mintToken("s3cret", "fis-inscriptions", "", "user", time.Hour)
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &service.RecapReport{
		Day:   "2026-01-10",
		Total: 2,
		Sections: []service.RecapSection{
			{Label: "Competitors", Inserted: []repository.RecapRow{{ID: 1}}, Deleted: []repository.RecapRow{{ID: 2}}},
		},
		DryRun: true,
	})
	assert.Equal(t, "recap 2026-01-10: 2 change(s)\n  Competitors  +1 -1\ndry run, nothing sent\n", buf.String())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "recap", "token"} {
		assert.True(t, names[want], want)
	}
}
