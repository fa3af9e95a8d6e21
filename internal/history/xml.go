package history

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"pricehistory/internal/xmldate"
)

// pointXML fixes the child order: symbol, date, closingPrice.
type pointXML struct {
	Symbol       *string           `xml:"symbol,omitempty"`
	Date         *xmldate.DateTime `xml:"date,omitempty"`
	ClosingPrice *priceXML         `xml:"closingPrice,omitempty"`
}

// priceXML is a decimal that keeps its scale in XML text.
type priceXML decimal.Decimal

func (p priceXML) MarshalText() ([]byte, error) {
	return []byte(priceText(decimal.Decimal(p))), nil
}

func (p *priceXML) UnmarshalText(text []byte) error {
	d, err := decimal.NewFromString(string(text))
	if err != nil {
		return fmt.Errorf("invalid closingPrice %q: %w", text, err)
	}
	*p = priceXML(d)
	return nil
}

// MarshalXML writes p as a historyPoint element. Absent fields are omitted.
func (p *Point) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Space: Namespace, Local: "historyPoint"}

	var w pointXML
	w.Symbol = p.Symbol
	if p.Date != nil {
		w.Date = &xmldate.DateTime{Time: *p.Date}
	}
	w.ClosingPrice = (*priceXML)(p.ClosingPrice)

	return e.EncodeElement(w, start)
}

// UnmarshalXML reads a historyPoint element. Missing children leave the
// matching field absent.
func (p *Point) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var w pointXML
	if err := d.DecodeElement(&w, &start); err != nil {
		return err
	}

	*p = Point{Symbol: w.Symbol, ClosingPrice: (*decimal.Decimal)(w.ClosingPrice)}
	if w.Date != nil {
		date := w.Date.Time
		p.Date = &date
	}
	return nil
}

// Document is the historyPoints envelope written by the command.
type Document struct {
	XMLName xml.Name `xml:"http://service.parabank.parasoft.com/ historyPoints"`
	Points  Series   `xml:"historyPoint"`
}

// Encode writes series as an indented historyPoints document.
func Encode(w io.Writer, series Series) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write xml header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(Document{Points: series}); err != nil {
		return fmt.Errorf("failed to encode history points: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// Decode reads a historyPoints document.
func Decode(r io.Reader) (Series, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode history points: %w", err)
	}
	return doc.Points, nil
}

