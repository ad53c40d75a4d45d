package comparison

import (
	"context"

	"github.com/EnmanuelReynoso23/el-pensum/model"
)

// Catalog is the read side of the catalog store the comparison pipeline needs.
//
// The Find*ByName methods match case-insensitively on the whole name and
// return every match; the Find*BySlug methods match on the stored slug.
// FindOffering returns (nil, nil) when the university does not offer the program.
type Catalog interface {
	FindUniversitiesByName(ctx context.Context, name string) ([]model.University, error)
	FindUniversitiesBySlug(ctx context.Context, slug string) ([]model.University, error)
	FindProgramsByName(ctx context.Context, name string) ([]model.Program, error)
	FindProgramsBySlug(ctx context.Context, slug string) ([]model.Program, error)
	FindOffering(ctx context.Context, universityID, programID uint) (*model.Offering, error)
}
