package core

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/encodeous/weft/state"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
)

func makeBundle(t *testing.T, key state.WfPrivateKey) string {
	cfg := state.CentralCfg{
		Nodes: []state.NodeCfg{{Id: "a"}},
	}
	raw, err := yaml.Marshal(cfg)
	assert.NoError(t, err)
	bundle, err := state.BundleConfig(string(raw), key)
	assert.NoError(t, err)
	return bundle
}

func TestFetchConfigFromFile(t *testing.T) {
	t.Chdir(t.TempDir())
	key := state.GenerateKey()
	bundle := makeBundle(t, key)
	assert.NoError(t, os.WriteFile("central.wfbundle", []byte(bundle), 0700))

	fetched, err := FetchConfig("file:central.wfbundle", key.Pubkey())
	assert.NoError(t, err)
	assert.Equal(t, state.NodeId("a"), fetched.Nodes[0].Id)
	// bundling stamps the publish time
	assert.NotZero(t, fetched.Timestamp)
}

func TestFetchConfigFromHTTP(t *testing.T) {
	key := state.GenerateKey()
	bundle := makeBundle(t, key)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, bundle)
	}))
	defer srv.Close()

	fetched, err := FetchConfig(srv.URL, key.Pubkey())
	assert.NoError(t, err)
	assert.Equal(t, state.NodeId("a"), fetched.Nodes[0].Id)
}

func TestFetchConfigRejectsWrongKey(t *testing.T) {
	t.Chdir(t.TempDir())
	key := state.GenerateKey()
	bundle := makeBundle(t, key)
	assert.NoError(t, os.WriteFile("central.wfbundle", []byte(bundle), 0700))

	other := state.GenerateKey()
	_, err := FetchConfig("file:central.wfbundle", other.Pubkey())
	assert.Error(t, err)
}

func TestFetchConfigMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	key := state.GenerateKey()
	_, err := FetchConfig("file:nope.wfbundle", key.Pubkey())
	assert.Error(t, err)
}
