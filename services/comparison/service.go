package comparison

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/config"
	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/utils/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Field is one comparable attribute, in display order
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
}

// FieldsFromConfig converts configured definitions, rejecting keys no offering carries
func FieldsFromConfig(defs []config.FieldDefinition) ([]Field, error) {
	fields := make([]Field, 0, len(defs))
	for _, d := range defs {
		if !slices.Contains(AttributeKeys, d.Key) {
			return nil, fmt.Errorf("comparison field %q is not an offering attribute", d.Key)
		}
		fields = append(fields, Field{Key: d.Key, Label: d.Label, Kind: Kind(d.Kind)})
	}
	return fields, nil
}

// FieldResult is one row of the comparison table
type FieldResult struct {
	Key             string         `json:"key"`
	Label           string         `json:"label"`
	Value1          Value          `json:"value1"`
	Value2          Value          `json:"value2"`
	Formatted1      string         `json:"formatted1"`
	Formatted2      string         `json:"formatted2"`
	Classification1 Classification `json:"classification1"`
	Classification2 Classification `json:"classification2"`
	CSSClass        string         `json:"css_class"`
	CSSClass2       string         `json:"css_class2"`
}

// View is the assembled comparison handed to the display layer
type View struct {
	UniversityName1 string        `json:"university_name_1"`
	UniversityName2 string        `json:"university_name_2"`
	ProgramName     string        `json:"program_name"`
	Fields          []FieldResult `json:"fields"`
	TotalCost1      string        `json:"total_cost_1"`
	TotalCost2      string        `json:"total_cost_2"`
	Available1      bool          `json:"available_1"`
	Available2      bool          `json:"available_2"`
}

// Service runs the slug -> name -> id -> offerings -> view pipeline
type Service struct {
	resolver *Resolver
	fields   []Field
	logger   *zap.Logger
}

// NewService creates a comparison service over catalog
func NewService(catalog Catalog, fields []Field, storeTimeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resolver: NewResolver(catalog, storeTimeout, logger),
		fields:   fields,
		logger:   logger,
	}
}

// Fields returns the active field set
func (s *Service) Fields() []Field {
	return s.fields
}

// Resolver exposes the name and offering resolver
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// RunComparison compares the program named by programSlug between the two
// universities named by slug1 and slug2. Any resolution failure aborts with no view.
func (s *Service) RunComparison(ctx context.Context, slug1, slug2, programSlug string) (*View, error) {
	if strings.TrimSpace(slug1) == "" || strings.TrimSpace(slug2) == "" || strings.TrimSpace(programSlug) == "" {
		return nil, fmt.Errorf("%w: two university slugs and a program slug are required", ErrInvalidArgument)
	}

	name1 := slug.Decode(slug1)
	name2 := slug.Decode(slug2)
	programName := slug.Decode(programSlug)

	var id1, id2 uint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := s.resolver.ResolveID(gctx, name1)
		id1 = id
		return err
	})
	g.Go(func() error {
		id, err := s.resolver.ResolveID(gctx, name2)
		id2 = id
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Debug("comparison aborted while resolving universities",
			zap.String("slug1", slug1),
			zap.String("slug2", slug2),
			zap.Error(err),
		)
		return nil, err
	}

	pair, err := s.resolver.ComparePair(ctx, id1, id2, programName)
	if err != nil {
		return nil, err
	}

	return Assemble(name1, name2, programName, pair.First, pair.Second, s.fields), nil
}

// Assemble builds the view from already resolved offerings. It has no side effects.
func Assemble(name1, name2, programName string, o1, o2 *model.Offering, fields []Field) *View {
	view := &View{
		UniversityName1: name1,
		UniversityName2: name2,
		ProgramName:     programName,
		Fields:          make([]FieldResult, 0, len(fields)),
		TotalCost1:      FormatTotalCost(TotalCost(o1)),
		TotalCost2:      FormatTotalCost(TotalCost(o2)),
		Available1:      o1 != nil,
		Available2:      o2 != nil,
	}

	for _, f := range fields {
		v1 := Attribute(o1, f.Key)
		v2 := Attribute(o2, f.Key)
		c1 := Classify(f.Kind, v1, v2)
		c2 := Classify(f.Kind, v2, v1)

		view.Fields = append(view.Fields, FieldResult{
			Key:             f.Key,
			Label:           f.Label,
			Value1:          v1,
			Value2:          v2,
			Formatted1:      Format(f.Kind, v1),
			Formatted2:      Format(f.Kind, v2),
			Classification1: c1,
			Classification2: c2,
			CSSClass:        c1.CSSClass(),
			CSSClass2:       c2.CSSClass(),
		})
	}

	return view
}
