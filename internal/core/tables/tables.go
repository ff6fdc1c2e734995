// Package tables registers the bakery table definitions with the core registry.
// Import this package to ensure all tables are registered.
package tables

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/bakeryimport/internal/core"
)

//go:embed bakery.yaml
var bakeryYAML []byte

func init() {
	defs, err := Parse(bakeryYAML)
	if err != nil {
		panic(fmt.Sprintf("tables: bakery.yaml: %v", err))
	}
	for _, def := range defs {
		core.Register(def)
	}
}

type document struct {
	Tables []tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Name        string          `yaml:"name"`
	Label       string          `yaml:"label"`
	Source      string          `yaml:"source"`
	Progress    progressDoc     `yaml:"progress"`
	PrimaryKey  []string        `yaml:"primary_key"`
	ForeignKeys []foreignKeyDoc `yaml:"foreign_keys"`
	Columns     []columnDoc     `yaml:"columns"`
}

type progressDoc struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

type foreignKeyDoc struct {
	Column     string `yaml:"column"`
	References string `yaml:"references"`
	RefColumn  string `yaml:"ref_column"`
}

type columnDoc struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Default string `yaml:"default"`
	NotNull bool   `yaml:"not_null"`
}

// Parse decodes a table schema document and validates it. Tables keep the
// order they are listed in.
func Parse(data []byte) ([]core.TableDefinition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if len(doc.Tables) == 0 {
		return nil, errors.New("schema defines no tables")
	}

	defs := make([]core.TableDefinition, 0, len(doc.Tables))
	seen := make(map[string]core.TableDefinition)
	for i, t := range doc.Tables {
		def := t.definition(i)
		if err := validate(def, seen); err != nil {
			return nil, fmt.Errorf("table %q: %w", t.Name, err)
		}
		seen[def.Info.Key] = def
		defs = append(defs, def)
	}
	return defs, nil
}

func (t tableDoc) definition(order int) core.TableDefinition {
	def := core.TableDefinition{
		Info: core.TableInfo{
			Key:        t.Name,
			Label:      t.Label,
			SourceFile: t.Source,
			Order:      order,
		},
		PrimaryKey: t.PrimaryKey,
		Progress:   core.ProgressRange{From: t.Progress.From, To: t.Progress.To},
	}
	for _, c := range t.Columns {
		def.Columns = append(def.Columns, core.Column{
			Name:    c.Name,
			Type:    c.Type,
			Default: c.Default,
			NotNull: c.NotNull,
		})
	}
	for _, fk := range t.ForeignKeys {
		def.ForeignKeys = append(def.ForeignKeys, core.ForeignKey{
			Column:    fk.Column,
			RefTable:  fk.References,
			RefColumn: fk.RefColumn,
		})
	}
	return def
}

// validate checks a definition against itself and the tables listed before
// it; foreign keys may only point backwards so load order satisfies them.
func validate(def core.TableDefinition, earlier map[string]core.TableDefinition) error {
	var errs []error

	if def.Info.Key == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if _, dup := earlier[def.Info.Key]; dup {
		errs = append(errs, errors.New("listed twice"))
	}
	if def.Info.SourceFile == "" {
		errs = append(errs, errors.New("source is required"))
	}
	if len(def.Columns) == 0 {
		errs = append(errs, errors.New("no columns"))
	}
	if p := def.Progress; p.From < 0 || p.To > 100 || p.From >= p.To {
		errs = append(errs, fmt.Errorf("progress range %d-%d must lie within 0-100", p.From, p.To))
	}

	names := make(map[string]bool, len(def.Columns))
	for _, col := range def.Columns {
		if col.Name == "" || col.Type == "" {
			errs = append(errs, fmt.Errorf("column %q needs a name and type", col.Name))
			continue
		}
		if names[col.Name] {
			errs = append(errs, fmt.Errorf("column %s listed twice", col.Name))
		}
		names[col.Name] = true
		if _, err := core.DefaultValue(col); err != nil {
			errs = append(errs, err)
		}
	}

	for _, k := range def.PrimaryKey {
		if !names[k] {
			errs = append(errs, fmt.Errorf("primary key column %s not defined", k))
		}
	}
	for _, fk := range def.ForeignKeys {
		if !names[fk.Column] {
			errs = append(errs, fmt.Errorf("foreign key column %s not defined", fk.Column))
		}
		ref, ok := earlier[fk.RefTable]
		if !ok {
			errs = append(errs, fmt.Errorf("foreign key references %s, which must be listed earlier", fk.RefTable))
			continue
		}
		found := false
		for _, c := range ref.Columns {
			found = found || c.Name == fk.RefColumn
		}
		if !found {
			errs = append(errs, fmt.Errorf("foreign key references unknown column %s.%s", fk.RefTable, fk.RefColumn))
		}
	}

	return errors.Join(errs...)
}
