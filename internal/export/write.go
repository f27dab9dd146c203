package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/twpayne/go-geom/encoding/geojson"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/placesweep/internal/discovery"
	"github.com/sells-group/placesweep/internal/geo"
)

// Header is the column set of the tabular formats.
var Header = []string{"name", "address", "rating", "user_ratings_total", "place_id", "lat", "lng"}

// Write encodes places to w in format.
func Write(w io.Writer, format Format, places []discovery.Place) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, places)
	case FormatCSV:
		return writeCSV(w, places)
	case FormatXLSX:
		return writeXLSX(w, places)
	case FormatGeoJSON:
		return writeGeoJSON(w, places)
	case FormatYAML:
		return writeYAML(w, places)
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}

// writeJSON writes the provider records as an indented array.
func writeJSON(w io.Writer, places []discovery.Place) error {
	out := make([]any, len(places))
	for i, p := range places {
		out[i] = payload(p)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}

// Row returns the tabular columns for p, in Header order.
func Row(p discovery.Place) []string {
	d := details(p)
	row := []string{d.Name, d.Address, "", "", p.ID(), "", ""}
	if score, ok := p.Score(); ok {
		row[2] = formatFloat(score)
	}
	if d.RatingCount != nil {
		row[3] = strconv.Itoa(*d.RatingCount)
	}
	if d.HasLocation {
		row[5] = formatFloat(d.Location.Latitude)
		row[6] = formatFloat(d.Location.Longitude)
	}
	return row
}

func writeCSV(w io.Writer, places []discovery.Place) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, p := range places {
		if err := cw.Write(Row(p)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", p.ID())
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

func writeXLSX(w io.Writer, places []discovery.Place) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Places")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}
	for _, p := range places {
		row := sheet.AddRow()
		for i, v := range Row(p) {
			cell := row.AddCell()
			switch {
			case v == "":
				cell.SetString("")
			case i == 2 || i == 5 || i == 6:
				n, _ := strconv.ParseFloat(v, 64)
				cell.SetFloat(n)
			case i == 3:
				n, _ := strconv.Atoi(v)
				cell.SetInt(n)
			default:
				cell.SetString(v)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

// writeGeoJSON writes a FeatureCollection of the places that have a
// location. Places without one are skipped.
func writeGeoJSON(w io.Writer, places []discovery.Place) error {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(places))}
	for _, p := range places {
		d := details(p)
		if !d.HasLocation {
			continue
		}
		props := map[string]interface{}{
			"place_id": p.ID(),
			"name":     d.Name,
			"address":  d.Address,
			"status":   p.Status().String(),
		}
		if score, ok := p.Score(); ok {
			props["rating"] = score
		}
		if d.RatingCount != nil {
			props["user_ratings_total"] = *d.RatingCount
		}
		if d.PrimaryType != "" {
			props["primary_type"] = d.PrimaryType
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         p.ID(),
			Geometry:   geo.Point(d.Location),
			Properties: props,
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}

// writeYAML writes the provider records as a YAML sequence. Records go
// through their JSON form so unmodelled provider fields survive.
func writeYAML(w io.Writer, places []discovery.Place) error {
	docs := make([]any, 0, len(places))
	for _, p := range places {
		data, err := json.Marshal(payload(p))
		if err != nil {
			return eris.Wrapf(err, "export: encode place %s", p.ID())
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return eris.Wrapf(err, "export: decode place %s", p.ID())
		}
		docs = append(docs, doc)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return eris.Wrap(err, "export: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "export: close yaml encoder")
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
