package github

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	bferrors "github.com/matzehuels/blockfall/pkg/errors"
)

// FileProvider serves a calendar stored on disk instead of calling GitHub.
type FileProvider struct {
	Path string
}

// FetchCalendar reads the file. from, to and refresh are ignored; an empty
// login in the file is filled in from login.
func (p FileProvider) FetchCalendar(ctx context.Context, login string, from, to time.Time, refresh bool) (*Calendar, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, bferrors.Wrap(bferrors.ErrCodeNotFound, err, "input file %s", p.Path)
		}
		return nil, bferrors.Wrap(bferrors.ErrCodeInvalidInput, err, "read input file %s", p.Path)
	}
	cal, err := ParseCalendar(data, filepath.Ext(p.Path))
	if err != nil {
		return nil, bferrors.Wrap(bferrors.ErrCodeInvalidInput, err, "parse input file %s", p.Path)
	}
	if cal.Login == "" {
		cal.Login = login
	}
	return cal, nil
}

// ParseCalendar decodes a calendar. ext selects YAML for ".yaml"/".yml";
// anything else is JSON, either a Calendar or a raw GraphQL response.
func ParseCalendar(data []byte, ext string) (*Calendar, error) {
	var cal Calendar
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cal); err != nil {
			return nil, err
		}
		return &cal, nil
	}

	var raw calendarResponse
	if err := json.Unmarshal(data, &raw); err == nil && raw.Data.User != nil {
		return raw.toCalendar(), nil
	}
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, err
	}
	return &cal, nil
}
