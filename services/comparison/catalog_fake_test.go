package comparison

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/utils/slug"
)

// fakeCatalog is an in-memory Catalog
type fakeCatalog struct {
	universities []model.University
	programs     []model.Program
	offerings    []model.Offering

	err   error
	calls atomic.Int32

	// onUniversityByName runs before each FindUniversitiesByName
	onUniversityByName func(ctx context.Context) error
}

var errStoreDown = errors.New("connection refused")

func (f *fakeCatalog) enter(ctx context.Context) error {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.err
}

func (f *fakeCatalog) FindUniversitiesByName(ctx context.Context, name string) ([]model.University, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	if f.onUniversityByName != nil {
		if err := f.onUniversityByName(ctx); err != nil {
			return nil, err
		}
	}
	var out []model.University
	for _, u := range f.universities {
		if strings.EqualFold(u.Name, name) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindUniversitiesBySlug(ctx context.Context, s string) ([]model.University, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	var out []model.University
	for _, u := range f.universities {
		if slug.Encode(u.Name) == s {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindProgramsByName(ctx context.Context, name string) ([]model.Program, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	var out []model.Program
	for _, p := range f.programs {
		if strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindProgramsBySlug(ctx context.Context, s string) ([]model.Program, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	var out []model.Program
	for _, p := range f.programs {
		if slug.Encode(p.Name) == s {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindOffering(ctx context.Context, universityID, programID uint) (*model.Offering, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	var best *model.Offering
	for i := range f.offerings {
		o := f.offerings[i]
		if o.UniversityID != universityID || o.ProgramID != programID {
			continue
		}
		if best == nil || o.ID < best.ID {
			best = &o
		}
	}
	return best, nil
}

// barrier releases every waiter once n callers have arrived
type barrier struct {
	wg    sync.WaitGroup
	ready chan struct{}
}

func newBarrier(n int) *barrier {
	b := &barrier{ready: make(chan struct{})}
	b.wg.Add(n)
	go func() {
		b.wg.Wait()
		close(b.ready)
	}()
	return b
}

func (b *barrier) arrive(ctx context.Context) error {
	b.wg.Done()
	select {
	case <-b.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }
func strp(v string) *string  { return &v }

// sampleCatalog holds two universities offering the same program
func sampleCatalog() *fakeCatalog {
	return &fakeCatalog{
		universities: []model.University{
			{ID: 1, Name: "Universidad de Ejemplo", Country: "República Dominicana", City: "Santo Domingo"},
			{ID: 2, Name: "Otra Universidad", Country: "República Dominicana", City: "Santiago"},
			{ID: 3, Name: "Universidad Autónoma", Country: "República Dominicana", City: "Santo Domingo"},
		},
		programs: []model.Program{
			{ID: 10, Name: "Ingeniería en Sistemas"},
			{ID: 11, Name: "Medicina"},
		},
		offerings: []model.Offering{
			{
				ID: 100, UniversityID: 1, ProgramID: 10,
				DurationYears:  f64(4),
				EnrollmentCost: f64(1000),
				AdmissionCost:  f64(50),
				CreditCost:     f64(10),
				TotalCredits:   intp(20),
				CardCost:       f64(25),
				SyllabusURL:    strp("https://cdn.example.com/syllabi/100.pdf"),
			},
			{
				ID: 101, UniversityID: 2, ProgramID: 10,
				DurationYears:  f64(4.5),
				EnrollmentCost: f64(1500),
				CreditCost:     f64(10),
				TotalCredits:   intp(220),
				CardCost:       f64(25),
			},
		},
	}
}
