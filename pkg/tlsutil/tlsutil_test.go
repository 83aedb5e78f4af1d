package tlsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSelfSignedRoundTrip(t *testing.T) {
	dir := t.TempDir()

	certFile, keyFile, err := WriteSelfSigned([]string{"localhost", "127.0.0.1"}, dir, time.Hour)
	require.NoError(t, err)

	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	server, err := ServerTLSConfig(certFile, keyFile)
	require.NoError(t, err)
	assert.Equal(t, "tls", server.Info().SecurityProtocol)

	client, err := ClientTLSConfig(certFile, "localhost")
	require.NoError(t, err)
	assert.Equal(t, "localhost", client.Info().ServerName)
}

func TestServerTLSConfig_MissingFiles(t *testing.T) {
	_, err := ServerTLSConfig("nope.pem", "nope-key.pem")
	assert.ErrorContains(t, err, "load server key pair")
}

func TestClientTLSConfig_BadCA(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a certificate"), 0o600))

	_, err := ClientTLSConfig(bad, "")
	assert.ErrorContains(t, err, "no certificates")

	_, err = ClientTLSConfig(filepath.Join(t.TempDir(), "missing.pem"), "")
	assert.ErrorContains(t, err, "read CA file")

	creds, err := ClientTLSConfig("", "")
	require.NoError(t, err)
	assert.NotNil(t, creds)
}
