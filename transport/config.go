package transport

import (
	"os"
	"sync"

	"github.com/vuuvv/errors"
	"gopkg.in/yaml.v3"
)

// Block is one numbered connection entry of the configuration file: which
// host to reach and how.
type Block struct {
	Index           int    `yaml:"index"`
	Protocol        string `yaml:"protocol"` // tcp (default) or pipe
	Address         string `yaml:"address"`
	ReadBufferSize  int    `yaml:"readBufferSize"`
	WriteBufferSize int    `yaml:"writeBufferSize"`
}

// Network maps the block's protocol name onto a net.Dial network.
func (b *Block) Network() string {
	if b.Protocol == "pipe" {
		return "unix"
	}
	return "tcp"
}

// Config is the parsed configuration file.
type Config struct {
	Blocks []*Block `yaml:"blocks"`
}

// Provider loads the configuration file once and answers lookups by block
// number. The load is idempotent: every call after the first returns the
// first result, matching the process-wide one-time cache the protocol's
// clients expect.
type Provider struct {
	path string
	once sync.Once
	cfg  *Config
	err  error
}

func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// Load reads and parses the file. Safe to call any number of times.
func (p *Provider) Load() error {
	p.once.Do(func() {
		f, err := os.Open(p.path)
		if err != nil {
			p.err = errors.Wrapf(err, "open configuration %s", p.path)
			return
		}
		defer func() {
			_ = f.Close()
		}()
		cfg := &Config{}
		if err = yaml.NewDecoder(f).Decode(cfg); err != nil {
			p.err = errors.Wrapf(err, "parse configuration %s", p.path)
			return
		}
		for _, b := range cfg.Blocks {
			if b.Address == "" {
				p.err = errors.Errorf("configuration block %d has no address", b.Index)
				return
			}
		}
		p.cfg = cfg
	})
	return p.err
}

// Block returns the configuration block with the given number.
func (p *Provider) Block(n int) (*Block, error) {
	if err := p.Load(); err != nil {
		return nil, err
	}
	for _, b := range p.cfg.Blocks {
		if b.Index == n {
			return b, nil
		}
	}
	return nil, errors.Errorf("no configuration block %d", n)
}
