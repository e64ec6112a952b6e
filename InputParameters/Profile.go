package InputParameters

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/ini.v1"
)

var (
	ErrNotFound = errors.New("not found")
	ErrParse    = errors.New("cannot parse value")
)

// Value lists the types a profile entry can be read as. Vectors and lists are
// whitespace separated numbers.
type Value interface {
	string | int | int64 | float64 | bool | r3.Vec | []float64
}

// Profile is a sectioned key = value store. Keys before the first section live in
// the default section, addressed with an empty section name.
type Profile struct {
	file      *ini.File
	requested map[string]bool
	defaulted []string
}

func ReadProfile(filename string) (p *Profile, err error) {
	var data []byte
	if data, err = os.ReadFile(filename); err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if p, err = NewProfile(data); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", filename, err)
	}
	return
}

// NewProfile parses profile text. Comments start with // or ; and run to the end of
// the line, a key without = has an empty value.
func NewProfile(data []byte) (p *Profile, err error) {
	var (
		clean   bytes.Buffer
		scanner = bufio.NewScanner(bytes.NewReader(data))
	)
	for scanner.Scan() {
		line := scanner.Text()
		if ind := strings.Index(line, "//"); ind >= 0 {
			line = line[:ind]
		}
		if ind := strings.Index(line, ";"); ind >= 0 {
			line = line[:ind]
		}
		line = strings.TrimSpace(line)
		if len(line) != 0 && !strings.HasPrefix(line, "[") && !strings.Contains(line, "=") {
			line += " ="
		}
		clean.WriteString(line + "\n")
	}
	if err = scanner.Err(); err != nil {
		return
	}
	p = &Profile{requested: make(map[string]bool)}
	p.file, err = ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, clean.Bytes())
	return
}

func sectionName(section string) string {
	if section == "" {
		return ini.DefaultSection
	}
	return section
}

// Query reports whether section.key is present
func (p *Profile) Query(section, key string) bool {
	sec, err := p.file.GetSection(sectionName(section))
	if err != nil {
		return false
	}
	return sec.HasKey(key)
}

// HasSection reports whether the profile has a [section] block
func (p *Profile) HasSection(section string) bool {
	_, err := p.file.GetSection(sectionName(section))
	return err == nil
}

// Defaulted lists the section.key entries answered with a fallback value
func (p *Profile) Defaulted() []string {
	return p.defaulted
}

// Unused lists the section.key entries present in the profile that nobody asked for
func (p *Profile) Unused() (unused []string) {
	for _, sec := range p.file.Sections() {
		for _, key := range sec.Keys() {
			name := sec.Name() + "." + key.Name()
			if sec.Name() == ini.DefaultSection {
				name = "." + key.Name()
			}
			if !p.requested[name] {
				unused = append(unused, name)
			}
		}
	}
	sort.Strings(unused)
	return
}

func (p *Profile) key(section, key string) (k *ini.Key, err error) {
	p.requested[section+"."+key] = true
	var sec *ini.Section
	if sec, err = p.file.GetSection(sectionName(section)); err != nil || !sec.HasKey(key) {
		return nil, fmt.Errorf("<%s.%s> %w", section, key, ErrNotFound)
	}
	return sec.Key(key), nil
}

// Demand returns section.key parsed as T
func Demand[T Value](p *Profile, section, key string) (v T, err error) {
	var k *ini.Key
	if k, err = p.key(section, key); err != nil {
		return
	}
	var out any
	switch any(v).(type) {
	case string:
		out = k.String()
	case int:
		out, err = k.Int()
	case int64:
		out, err = k.Int64()
	case float64:
		out, err = k.Float64()
	case bool:
		out, err = k.Bool()
	case r3.Vec:
		var f []float64
		if f, err = numbers(k.String()); err == nil && len(f) != 3 {
			err = fmt.Errorf("need 3 numbers, have %d", len(f))
		}
		if err == nil {
			out = r3.Vec{X: f[0], Y: f[1], Z: f[2]}
		}
	case []float64:
		out, err = numbers(k.String())
	}
	if err != nil {
		return v, fmt.Errorf("%w of <%s.%s>: <%s>", ErrParse, section, key, k.String())
	}
	return out.(T), nil
}

// Request returns section.key parsed as T, or def when it is missing or malformed
func Request[T Value](p *Profile, section, key string, def T) T {
	v, err := Demand[T](p, section, key)
	if err != nil {
		p.defaulted = append(p.defaulted, section+"."+key)
		return def
	}
	return v
}

func numbers(s string) (f []float64, err error) {
	var x float64
	for _, field := range strings.Fields(s) {
		if x, err = strconv.ParseFloat(field, 64); err != nil {
			return nil, err
		}
		f = append(f, x)
	}
	return
}
