package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbond-analytics/market-etl/xerrors"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market-etl.ini")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const validConfig = `
[sources]
count = 1

[source1]
name = quotes
type = object-store
category = AllPriceDepth
endpoint = https://s3.example.com
bucket = bond-quotes
region = us-east-1

[targets]
count = 1

[target1]
name = warehouse
type = columnar
host = clickhouse.internal
port = 9000
user = etl
password = secret
database = market

[logging]
level = debug
`

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "quotes", cfg.Sources[0].Name)
	assert.Equal(t, SourceTypeObjectStore, cfg.Sources[0].Type)
	assert.True(t, cfg.Sources[0].Anonymous())

	require.Len(t, cfg.Targets, 1)
	assert.Equal(t, "clickhouse.internal", cfg.Targets[0].Host)
	assert.Equal(t, 9000, cfg.Targets[0].Port)

	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFileIsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.KindConfig))
}

func TestLoadRejectsZeroSourceCount(t *testing.T) {
	path := writeConfig(t, `
[sources]
count = 0

[targets]
count = 1

[target1]
host = x
port = 1
database = y
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.KindConfig))
}

func TestLoadRejectsObjectStoreSourceMissingEndpoint(t *testing.T) {
	path := writeConfig(t, `
[sources]
count = 1

[source1]
name = quotes
type = object-store
category = AllPriceDepth
bucket = b
region = r

[targets]
count = 1

[target1]
host = x
port = 1
database = y
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMismatchedCredentials(t *testing.T) {
	sc := SourceConfig{
		Name:        "quotes",
		Type:        SourceTypeObjectStore,
		Category:    CategoryAllPriceDepth,
		Endpoint:    "https://s3.example.com",
		Bucket:      "b",
		Region:      "r",
		AccessKeyID: "only-key-no-secret",
	}
	err := sc.Validate()
	require.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, validConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	src := cfg.Sources[0]
	assert.Equal(t, "20060102", src.DateFormat)
	assert.Equal(t, int64(100*1024*1024), src.MaxObjectBytes)
	assert.Equal(t, 1, src.PoolMin)
	assert.Equal(t, 5, src.PoolMax)
}

func TestSQLSourceRequiresTemplate(t *testing.T) {
	sc := SourceConfig{
		Name:     "futures",
		Type:     SourceTypeSQL,
		Category: CategoryBondFutureQuote,
		DBURL:    "postgres://localhost/db",
		DBUser:   "u",
		DBPassword: "p",
	}
	err := sc.Validate()
	assert.Error(t, err)
}

func TestTargetRequiresHostPortDatabase(t *testing.T) {
	tc := TargetConfig{Type: TargetTypeColumnar}
	assert.Error(t, tc.Validate())

	tc = TargetConfig{Type: TargetTypeColumnar, Host: "h", Port: 9000, Database: "d"}
	assert.NoError(t, tc.Validate())
}

func TestConfigValidateRequiresExactlyOneTarget(t *testing.T) {
	cfg := &Config{
		Sources: []SourceConfig{{
			Name: "s", Type: SourceTypeSQL, Category: CategoryBondFutureQuote,
			DBURL: "x", DBUser: "u", DBPassword: "p", SQLTemplate: "select 1",
		}},
	}
	err := cfg.Validate()
	require.Error(t, err)
}
