package models

import (
	"encoding/json"
	"regexp"
)

// ImageSettings describes a logo drawn in the middle of a QR code.
type ImageSettings struct {
	Src      string `json:"src"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Excavate bool   `json:"excavate"`
}

// QROptions controls how the QR code for a link is rendered.
type QROptions struct {
	FgColor       string         `json:"fgColor"`
	BgColor       string         `json:"bgColor"`
	Level         string         `json:"level"`
	ImageSettings *ImageSettings `json:"imageSettings"`
}

// DefaultQROptions is applied to every new link and to stored records that predate qrOptions.
var DefaultQROptions = QROptions{
	FgColor: "#000000",
	BgColor: "#ffffff",
	Level:   "H",
}

// Link is the record stored under link:{id}.
type Link struct {
	ID             string     `json:"id"`
	DestinationURL string     `json:"destinationUrl"`
	ShortURL       string     `json:"shortUrl"`
	CreatedAt      int64      `json:"createdAt"`
	UpdatedAt      int64      `json:"updatedAt"`
	ScanCount      int64      `json:"scanCount"`
	QROptions      *QROptions `json:"qrOptions,omitempty"`
}

// Options returns the link's QR options, falling back to DefaultQROptions.
func (l *Link) Options() QROptions {
	if l.QROptions == nil {
		return DefaultQROptions
	}
	return *l.QROptions
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidLevel reports whether level is a QR error-correction level.
func ValidLevel(level string) bool {
	switch level {
	case "L", "M", "Q", "H":
		return true
	}
	return false
}

// ValidColor reports whether c is a #rgb or #rrggbb color.
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}

// OptionalImageSettings distinguishes an absent imageSettings key from an explicit null.
type OptionalImageSettings struct {
	Set   bool
	Value *ImageSettings
}

// UnmarshalJSON only runs when the key is present, so Set records presence.
func (o *OptionalImageSettings) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v ImageSettings
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// QROptionsPatch holds the qrOptions fields a client wants to change.
type QROptionsPatch struct {
	FgColor       *string               `json:"fgColor,omitempty"`
	BgColor       *string               `json:"bgColor,omitempty"`
	Level         *string               `json:"level,omitempty"`
	ImageSettings OptionalImageSettings `json:"imageSettings"`
}

// MarshalJSON emits only the supplied fields so a round trip keeps absent and null apart.
func (p QROptionsPatch) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 4)
	if p.FgColor != nil {
		m["fgColor"] = *p.FgColor
	}
	if p.BgColor != nil {
		m["bgColor"] = *p.BgColor
	}
	if p.Level != nil {
		m["level"] = *p.Level
	}
	if p.ImageSettings.Set {
		m["imageSettings"] = p.ImageSettings.Value
	}
	return json.Marshal(m)
}

// Validate checks every supplied field.
func (p *QROptionsPatch) Validate() error {
	if p.FgColor != nil && !ValidColor(*p.FgColor) {
		return Validationf("fgColor must be a hex color")
	}
	if p.BgColor != nil && !ValidColor(*p.BgColor) {
		return Validationf("bgColor must be a hex color")
	}
	if p.Level != nil && !ValidLevel(*p.Level) {
		return Validationf("level must be one of L, M, Q, H")
	}
	if is := p.ImageSettings.Value; is != nil {
		if is.Src == "" {
			return Validationf("imageSettings.src is required")
		}
		if is.Width <= 0 || is.Height <= 0 {
			return Validationf("imageSettings width and height must be positive")
		}
	}
	return nil
}

// Apply merges the patch onto base field by field and returns the result.
func (p *QROptionsPatch) Apply(base QROptions) QROptions {
	out := base
	if p.FgColor != nil {
		out.FgColor = *p.FgColor
	}
	if p.BgColor != nil {
		out.BgColor = *p.BgColor
	}
	if p.Level != nil {
		out.Level = *p.Level
	}
	if p.ImageSettings.Set {
		if p.ImageSettings.Value == nil {
			out.ImageSettings = nil
		} else {
			is := *p.ImageSettings.Value
			out.ImageSettings = &is
		}
	}
	return out
}

// LinkPatch is the body of PUT /links/{id}.
type LinkPatch struct {
	DestinationURL *string         `json:"destinationUrl,omitempty"`
	QROptions      *QROptionsPatch `json:"qrOptions,omitempty"`
}

// Empty reports whether neither field was supplied.
func (p *LinkPatch) Empty() bool {
	return p.DestinationURL == nil && p.QROptions == nil
}
