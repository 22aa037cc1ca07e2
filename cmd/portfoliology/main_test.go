package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup points the CLI at a fresh database and a fake quote provider.
func setup(t *testing.T) {
	t.Helper()
	dir := t.TempDir()

	quotes := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stable/stock/VTI/quote":
			fmt.Fprint(w, `{"latestPrice":250.5,"change":1.25,"changePercent":0.005}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(quotes.Close)

	cfg := filepath.Join(dir, "portfoliology.toml")
	content := fmt.Sprintf(`
[storage]
path = %q

[clients.iex]
base_url = %q
token = "cli-token"
rate_limit = 0

[logging]
level = "disabled"
`, filepath.ToSlash(filepath.Join(dir, "cli.db")), quotes.URL)
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o644))

	t.Setenv("IEX_API_TOKEN", "")
	t.Setenv("PORTFOLIOLOGY_IEX_TOKEN", "")
	t.Setenv("PORTFOLIOLOGY_DB_PATH", "")

	old := *configPath
	*configPath = cfg
	t.Cleanup(func() { *configPath = old })
}

func run(t *testing.T, cmd subcommands.Command, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))

	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	return cmd.Execute(context.Background(), fs), buf.String()
}

func TestAddAccountAndPosition(t *testing.T) {
	setup(t)

	status, out := run(t, &addAccountCmd{}, "-name", "Roth", "-type", "roth", "-cash", "1234.5")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "created account 1 (Roth)\n", out)

	status, out = run(t, &addPositionCmd{}, "-account", "1", "-symbol", "vti", "-name", "Vanguard Total", "-shares", "4", "-cost", "800")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "added VTI to Roth (position 1)\n", out)

	status, out = run(t, &accountsCmd{})
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Roth  [Roth IRA or 401(k)]  cash $1,234.50")
	assert.Contains(t, out, "VTI")
	assert.Contains(t, out, "$800.00")
}

func TestAddAccount_UsageErrors(t *testing.T) {
	setup(t)

	status, _ := run(t, &addAccountCmd{})
	assert.Equal(t, subcommands.ExitUsageError, status)

	status, _ = run(t, &addAccountCmd{}, "-name", "X", "-type", "pension")
	assert.Equal(t, subcommands.ExitUsageError, status)

	status, _ = run(t, &addPositionCmd{}, "-symbol", "VTI")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestAddPosition_UnknownAccount(t *testing.T) {
	setup(t)

	status, _ := run(t, &addPositionCmd{}, "-account", "7", "-symbol", "VTI", "-shares", "1")
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestSummary_Raw(t *testing.T) {
	setup(t)
	_, _ = run(t, &addAccountCmd{}, "-name", "Roth", "-type", "ROTH", "-cash", "100")
	_, _ = run(t, &addPositionCmd{}, "-account", "1", "-symbol", "VTI", "-shares", "4", "-cost", "800")

	status, out := run(t, &summaryCmd{}, "-raw")
	require.Equal(t, subcommands.ExitSuccess, status)

	// 4 x 250.50 = 1002.00 market value, plus 100 cash.
	assert.Contains(t, out, "**Total Value:** $1,102.00")
	assert.Contains(t, out, "| VTI |")
	assert.Contains(t, out, "| **Totals** |")
}

func TestSummary_RefreshFailure(t *testing.T) {
	setup(t)
	_, _ = run(t, &addAccountCmd{}, "-name", "Roth", "-type", "ROTH")
	_, _ = run(t, &addPositionCmd{}, "-account", "1", "-symbol", "ZZZZ", "-shares", "1")

	status, out := run(t, &summaryCmd{}, "-raw")
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Empty(t, out, "no partial table on failure")
}

func TestImport(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accounts":[{"name":"IRA","account_type":"TRADITIONAL","positions":[{"symbol":"VTI","shares":2,"cost_basis":400}]}]}`), 0o644))

	status, out := run(t, &importCmd{}, path)
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "imported 1 positions, skipped 0\n", out)

	status, _ = run(t, &importCmd{})
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestVersion(t *testing.T) {
	status, out := run(t, &versionCmd{})
	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.True(t, strings.HasPrefix(out, "portfoliology "))
}

func TestHoldingsAndValuationShareDatabase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "portfoliology.toml"), []byte(`
[storage]
path = "custom/holdings.db"

[clients.iex]
token = "cli-token"

[logging]
level = "disabled"
`), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("PORTFOLIOLOGY_CONFIG", "")
	t.Setenv("PORTFOLIOLOGY_DB_PATH", "")
	t.Setenv("IEX_API_TOKEN", "")
	t.Setenv("PORTFOLIOLOGY_IEX_TOKEN", "")
	old := *configPath
	*configPath = ""
	t.Cleanup(func() { *configPath = old })

	status, _ := run(t, &addAccountCmd{}, "-name", "Roth", "-type", "ROTH")
	require.Equal(t, subcommands.ExitSuccess, status)

	a, err := openApp()
	require.NoError(t, err)
	defer a.Close()

	accounts, err := a.Storage.AccountStorage().ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Roth", accounts[0].Name)

	assert.FileExists(t, filepath.Join(dir, "custom", "holdings.db"))
	assert.NoFileExists(t, filepath.Join(dir, "data", "portfoliology.db"))
}
