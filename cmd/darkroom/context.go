package main

import (
	"strings"
	"sync"

	"darkroom/internal/client"
	"darkroom/internal/config"
)

type commandContext struct {
	addressFlag *string
	configFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(addressFlag, configFlag *string) *commandContext {
	return &commandContext{
		addressFlag: addressFlag,
		configFlag:  configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// apiClient builds a daemon client from the --address flag, falling back to
// the configured bind address.
func (c *commandContext) apiClient() (*client.Client, error) {
	address := ""
	if c.addressFlag != nil {
		address = strings.TrimSpace(*c.addressFlag)
	}
	token := ""

	cfg, err := c.ensureConfig()
	if err != nil {
		// An explicit address still works without a readable config file.
		if address == "" {
			return nil, err
		}
	} else {
		if address == "" {
			address = cfg.Paths.APIBind
		}
		token = cfg.Paths.APIToken
	}
	return client.New(address, token), nil
}
