package transport

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simlink.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProviderLooksUpBlocks(t *testing.T) {
	path := writeConfig(t, `
blocks:
  - index: 0
    protocol: pipe
    address: /tmp/sim.sock
  - index: 1
    protocol: tcp
    address: 127.0.0.1:500
    readBufferSize: 65536
    writeBufferSize: 65536
`)
	p := NewProvider(path)

	b, err := p.Block(1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Address != "127.0.0.1:500" || b.Network() != "tcp" {
		t.Fatalf("block 1: %+v", b)
	}
	if b.ReadBufferSize != 65536 {
		t.Fatalf("block 1 buffer: %d", b.ReadBufferSize)
	}

	b, err = p.Block(0)
	if err != nil {
		t.Fatal(err)
	}
	if b.Network() != "unix" {
		t.Fatalf("pipe protocol must dial a unix socket, got %s", b.Network())
	}

	if _, err = p.Block(7); err == nil {
		t.Fatal("unknown block number must fail the lookup")
	}
}

func TestProviderLoadsOnce(t *testing.T) {
	path := writeConfig(t, `
blocks:
  - index: 0
    address: 127.0.0.1:500
`)
	p := NewProvider(path)
	if err := p.Load(); err != nil {
		t.Fatal(err)
	}

	// the file on disk no longer matters after the first load
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := p.Load(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Block(0); err != nil {
		t.Fatal(err)
	}
}

func TestProviderRejectsBadConfig(t *testing.T) {
	for name, content := range map[string]string{
		"not yaml":   `{{{{`,
		"no address": "blocks:\n  - index: 0\n",
	} {
		p := NewProvider(writeConfig(t, content))
		if err := p.Load(); err == nil {
			t.Fatalf("%s: load must fail", name)
		}
		if _, err := p.Block(0); err == nil {
			t.Fatalf("%s: lookup must surface the load error", name)
		}
	}
}

func TestProviderMissingFile(t *testing.T) {
	p := NewProvider(filepath.Join(t.TempDir(), "absent.yaml"))
	if err := p.Load(); err == nil {
		t.Fatal("missing configuration file must fail the load")
	}
}
