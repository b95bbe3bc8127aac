package templates

import (
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.Time = t.UTC().Format("02 January 2006, 15:04")
	}
}
func WithResetURL(url string) Option { return func(d *EmailData) { d.ResetURL = url } }
func WithLoginURL(url string) Option { return func(d *EmailData) { d.LoginURL = url } }

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// NewEmailData fills the common fields, then applies opts.
func NewEmailData(appName, typ, email string, opts ...Option) EmailData {
	d := EmailData{
		Email:   email,
		Type:    typ,
		AppName: appName,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
