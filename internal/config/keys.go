package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// setters maps config keys, as written in config.json, to their parsers
var setters = map[string]func(*Config, string) error{
	"base_url":      func(c *Config, v string) error { c.BaseURL = v; return nil },
	"model":         func(c *Config, v string) error { c.Model = v; return nil },
	"system_prompt": func(c *Config, v string) error { c.SystemPrompt = v; return nil },
	"tui_theme":     func(c *Config, v string) error { c.TUITheme = v; return nil },
	"log_level":     func(c *Config, v string) error { c.LogLevel = v; return nil },
	"log_file":      func(c *Config, v string) error { c.LogFile = v; return nil },
	"temperature": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		c.Temperature = f
		return err
	},
	"max_tokens":        intSetter(func(c *Config) *int { return &c.MaxTokens }),
	"request_timeout":   intSetter(func(c *Config) *int { return &c.RequestTimeout }),
	"send_history":      boolSetter(func(c *Config) *bool { return &c.SendHistory }),
	"copy_to_clipboard": boolSetter(func(c *Config) *bool { return &c.CopyToClipboard }),
	"markdown.style":    func(c *Config, v string) error { c.Markdown.Style = v; return nil },
	"markdown.enable_emoji": boolSetter(func(c *Config) *bool {
		return &c.Markdown.EnableEmoji
	}),
	"markdown.preserve_newlines": boolSetter(func(c *Config) *bool {
		return &c.Markdown.PreserveNewLines
	}),
	"markdown.table_wrap": boolSetter(func(c *Config) *bool {
		return &c.Markdown.TableWrap
	}),
	"markdown.inline_table_links": boolSetter(func(c *Config) *bool {
		return &c.Markdown.InlineTableLinks
	}),
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// Keys returns every settable key, sorted
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns value to key and validates the result. cfg is left unchanged on error.
func (c *Config) Set(key, value string) error {
	set, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}

	next := *c
	if err := set(&next, value); err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*c = next
	return nil
}
