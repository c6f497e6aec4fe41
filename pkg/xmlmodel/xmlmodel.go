// Package xmlmodel decodes the XML form of the model container into the
// same model.Forest shape the binary decoder produces.
package xmlmodel

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goopsie/assetdecode/pkg/model"
)

// RootElement is the name of the document element.
const RootElement = "roblox"

// OpenTag is the opening of the document element, used for sniffing.
const OpenTag = "<" + RootElement

// ErrNoRoot is returned when the document has no root element.
var ErrNoRoot = errors.New("xml: no <roblox> root element")

type decoder struct {
	dec       *xml.Decoder
	forest    *model.Forest
	log       *zap.Logger
	synthetic int
}

// Option configures Decode.
type Option func(*decoder)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(d *decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// Decode parses an XML model document.
func Decode(data []byte, opts ...Option) (*model.Forest, error) {
	d := &decoder{
		dec:    xml.NewDecoder(bytes.NewReader(data)),
		forest: model.NewForest(0),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	root, err := d.findRoot()
	if err != nil {
		return nil, err
	}
	if err := d.parseRoot(root); err != nil {
		return nil, err
	}
	return d.forest, nil
}

func (d *decoder) findRoot() (xml.StartElement, error) {
	for {
		tok, err := d.dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, ErrNoRoot
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("find root: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != RootElement {
				return xml.StartElement{}, fmt.Errorf("root element <%s>: %w", se.Name.Local, ErrNoRoot)
			}
			return se, nil
		}
	}
}

func (d *decoder) parseRoot(root xml.StartElement) error {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return fmt.Errorf("read <%s>: %w", root.Name.Local, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Item":
				if err := d.parseItem(t, model.NoHandle); err != nil {
					return err
				}
			case "Meta":
				if err := d.parseMeta(t); err != nil {
					return err
				}
			default:
				if err := d.dec.Skip(); err != nil {
					return fmt.Errorf("skip <%s>: %w", t.Name.Local, err)
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// add creates a node, inventing a reference when the document omits one or
// repeats one, so every node stays addressable.
func (d *decoder) add(className, ref string) model.Handle {
	if ref != "" {
		h, err := d.forest.Add(className, ref)
		if err == nil {
			return h
		}
		d.log.Debug("replacing reference", zap.String("class", className), zap.Error(err))
	}
	for {
		d.synthetic++
		h, err := d.forest.Add(className, "xml:"+strconv.Itoa(d.synthetic))
		if err == nil {
			return h
		}
	}
}

func (d *decoder) parseItem(se xml.StartElement, parent model.Handle) error {
	h := d.add(attr(se, "class"), attr(se, "referent"))
	if parent != model.NoHandle {
		if err := d.forest.Attach(parent, h); err != nil {
			return fmt.Errorf("attach item: %w", err)
		}
	}

	for {
		tok, err := d.dec.Token()
		if err != nil {
			return fmt.Errorf("read <Item class=%q>: %w", attr(se, "class"), err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Properties":
				if err := d.parseProperties(h); err != nil {
					return err
				}
			case "Item":
				if err := d.parseItem(t, h); err != nil {
					return err
				}
			default:
				if err := d.dec.Skip(); err != nil {
					return fmt.Errorf("skip <%s>: %w", t.Name.Local, err)
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

type propertyElement struct {
	Name  string `xml:"name,attr"`
	Text  string `xml:",chardata"`
	Inner string `xml:",innerxml"`
}

func (d *decoder) parseProperties(h model.Handle) error {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return fmt.Errorf("read <Properties>: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var p propertyElement
			if err := d.dec.DecodeElement(&p, &t); err != nil {
				return fmt.Errorf("read property <%s>: %w", t.Name.Local, err)
			}
			if p.Name == "" {
				continue
			}
			_ = d.forest.SetProperty(h, p.Name, propertyValue(t.Name.Local, p))
		case xml.EndElement:
			return nil
		}
	}
}

// propertyValue types a property by its element name. Numbers that fail to
// parse and unrecognised elements keep their raw text.
func propertyValue(tag string, p propertyElement) model.Value {
	text := strings.TrimSpace(p.Text)
	switch tag {
	case "string", "ProtectedString", "BinaryString":
		return model.String(p.Text)
	case "bool":
		if b, err := strconv.ParseBool(strings.ToLower(text)); err == nil {
			return model.Bool(b)
		}
	case "float", "double":
		if f, err := strconv.ParseFloat(text, 32); err == nil {
			return model.Float32(float32(f))
		}
	case "int", "int64", "token":
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			if n >= math.MinInt32 && n <= math.MaxInt32 {
				return model.Int32(int32(n))
			}
		}
	}
	return model.String(strings.TrimSpace(p.Inner))
}

func (d *decoder) parseMeta(se xml.StartElement) error {
	var p propertyElement
	if err := d.dec.DecodeElement(&p, &se); err != nil {
		return fmt.Errorf("read <Meta>: %w", err)
	}
	if p.Name == "" {
		return nil
	}
	if d.forest.Metadata == nil {
		d.forest.Metadata = make(map[string]string)
	}
	d.forest.Metadata[p.Name] = p.Text
	return nil
}
