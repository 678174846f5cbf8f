package session

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// CookieFile reads the cookie header from a file. Each non-empty line that
// does not start with '#' is one of:
//
//	FedAuth=77u/PD94bWwg...
//	FedAuth=77u/...; rtFa=Qm9keQ...
//	contoso.sharepoint.com	FALSE	/	TRUE	0	FedAuth	77u/...
//
// The last form is a Netscape cookie jar line as exported by browsers and
// curl. Jar lines for HttpOnly cookies, which FedAuth and rtFa always are,
// start with "#HttpOnly_" and are read like any other jar line.
type CookieFile struct {
	fs   afero.Fs
	path string

	mu     sync.RWMutex
	cookie string
}

// NewCookieFile loads path from fs.
func NewCookieFile(fs afero.Fs, path string) (*CookieFile, error) {
	c := &CookieFile{fs: fs, path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload reads the file again, e.g. after the user signed in anew.
func (c *CookieFile) Reload() error {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return fmt.Errorf("error reading cookie file: %w", err)
	}

	cookie, err := parseCookies(data)
	if err != nil {
		return fmt.Errorf("error parsing cookie file %s: %w", c.path, err)
	}

	c.mu.Lock()
	c.cookie = cookie
	c.mu.Unlock()
	return nil
}

// Path returns the file the cookies are read from.
func (c *CookieFile) Path() string {
	return c.path
}

func (c *CookieFile) Cookie() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cookie
}

const httpOnlyPrefix = "#HttpOnly_"

func parseCookies(data []byte) (string, error) {
	var pairs []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, httpOnlyPrefix)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if fields := strings.Split(line, "\t"); len(fields) == 7 {
			pairs = append(pairs, fields[5]+"="+fields[6])
			continue
		}

		for _, part := range strings.Split(line, ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, _, ok := strings.Cut(part, "=")
			if !ok || strings.TrimSpace(name) == "" {
				return "", fmt.Errorf("line %d: expected name=value, got %q", lineNum, part)
			}
			pairs = append(pairs, part)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(pairs) == 0 {
		return "", fmt.Errorf("no cookies found")
	}

	return strings.Join(pairs, "; "), nil
}
