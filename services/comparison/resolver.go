package comparison

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/utils/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultStoreTimeout bounds every catalog call when no timeout is configured
const DefaultStoreTimeout = 5 * time.Second

// Resolver maps names to catalog records and fetches offerings
type Resolver struct {
	catalog Catalog
	timeout time.Duration
	logger  *zap.Logger
}

// NewResolver creates a resolver. A non-positive timeout falls back to DefaultStoreTimeout.
func NewResolver(catalog Catalog, timeout time.Duration, logger *zap.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{catalog: catalog, timeout: timeout, logger: logger}
}

// ResolveUniversity finds the single university whose name matches name case-insensitively.
// When no exact match exists the slug of name is tried, so "universidad autonoma" still
// finds "Universidad Autónoma".
func (r *Resolver) ResolveUniversity(ctx context.Context, name string) (*model.University, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: university name is required", ErrInvalidArgument)
	}

	matches, err := r.findUniversities(ctx, name)
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: university %q", ErrNotFound, name)
	case 1:
		return &matches[0], nil
	default:
		r.logger.Warn("university name matches several records",
			zap.String("name", name),
			zap.Int("matches", len(matches)),
		)
		return nil, fmt.Errorf("%w: %d universities named %q", ErrAmbiguousMatch, len(matches), name)
	}
}

// ResolveID returns the identifier of the university named name
func (r *Resolver) ResolveID(ctx context.Context, name string) (uint, error) {
	u, err := r.ResolveUniversity(ctx, name)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (r *Resolver) findUniversities(ctx context.Context, name string) ([]model.University, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	matches, err := r.catalog.FindUniversitiesByName(cctx, name)
	if err != nil {
		return nil, storeErr("find universities by name", err)
	}
	if len(matches) > 0 {
		return matches, nil
	}

	s := slug.Encode(name)
	if s == "" {
		return nil, nil
	}
	matches, err = r.catalog.FindUniversitiesBySlug(cctx, s)
	if err != nil {
		return nil, storeErr("find universities by slug", err)
	}
	return matches, nil
}

// ResolveProgram finds the single program named name, with the same matching
// rules as ResolveUniversity
func (r *Resolver) ResolveProgram(ctx context.Context, name string) (*model.Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: program name is required", ErrInvalidArgument)
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	matches, err := r.catalog.FindProgramsByName(cctx, name)
	if err != nil {
		return nil, storeErr("find programs by name", err)
	}
	if len(matches) == 0 {
		if s := slug.Encode(name); s != "" {
			matches, err = r.catalog.FindProgramsBySlug(cctx, s)
			if err != nil {
				return nil, storeErr("find programs by slug", err)
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: program %q", ErrNotFound, name)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %d programs named %q", ErrAmbiguousMatch, len(matches), name)
	}
}

// Pair holds the offering of each university for one program. Either side may be nil.
type Pair struct {
	Program *model.Program
	First   *model.Offering
	Second  *model.Offering
}

// Offerings returns the present sides in order
func (p *Pair) Offerings() []model.Offering {
	out := make([]model.Offering, 0, 2)
	if p.First != nil {
		out = append(out, *p.First)
	}
	if p.Second != nil {
		out = append(out, *p.Second)
	}
	return out
}

// ComparePair resolves the program and fetches both offerings concurrently.
// A university without the program is a nil side, not an error.
func (r *Resolver) ComparePair(ctx context.Context, universityID1, universityID2 uint, programName string) (*Pair, error) {
	program, err := r.ResolveProgram(ctx, programName)
	if err != nil {
		return nil, err
	}

	pair := &Pair{Program: program}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		o, err := r.findOffering(gctx, universityID1, program.ID)
		pair.First = o
		return err
	})
	g.Go(func() error {
		o, err := r.findOffering(gctx, universityID2, program.ID)
		pair.Second = o
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pair, nil
}

// Compare returns zero, one or two offerings for programName, one per university
// that offers it
func (r *Resolver) Compare(ctx context.Context, universityID1, universityID2 uint, programName string) ([]model.Offering, error) {
	pair, err := r.ComparePair(ctx, universityID1, universityID2, programName)
	if err != nil {
		return nil, err
	}
	return pair.Offerings(), nil
}

func (r *Resolver) findOffering(ctx context.Context, universityID, programID uint) (*model.Offering, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	o, err := r.catalog.FindOffering(cctx, universityID, programID)
	if err != nil {
		return nil, storeErr("find offering", err)
	}
	return o, nil
}
