package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/EnmanuelReynoso23/el-pensum/model"
	"github.com/EnmanuelReynoso23/el-pensum/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUserExists is returned when creating a user whose email is taken
var ErrUserExists = errors.New("user already exists")

// Seeder handles database seeding operations
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, logger: logger}
}

// SeedAll seeds the catalog and, when credentials are given, the first admin.
// Every step is skipped when its table already has rows.
func (s *Seeder) SeedAll(adminEmail, adminPassword string) error {
	if adminEmail != "" && adminPassword != "" {
		if _, err := s.CreateUser(adminEmail, adminPassword, "System Administrator", model.RoleAdmin); err != nil && !errors.Is(err, ErrUserExists) {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	} else {
		s.logger.Warn("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
	}

	if err := s.SeedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	s.logger.Info("database seeding completed")
	return nil
}

// CreateUser hashes password and stores a new user
func (s *Seeder) CreateUser(email, password, name, role string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}

	s.logger.Info("created user", zap.String("email", user.Email), zap.String("role", user.Role))
	return user, nil
}

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

type seedOffering struct {
	university string
	program    string
	years      float64
	enrollment float64
	admission  float64
	credit     float64
	card       float64
	credits    int
}

// SeedCatalog creates sample universities, programs and offerings
func (s *Seeder) SeedCatalog() error {
	var count int64
	if err := s.db.Model(&model.University{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("catalog already seeded, skipping")
		return nil
	}

	universities := []model.University{
		{Name: "Pontificia Universidad Católica Madre y Maestra", Country: "República Dominicana", City: "Santiago", NationalRank: 1, WorldRank: 1801, LogoURL: "https://www.pucmm.edu.do/logo.png"},
		{Name: "Instituto Tecnológico de Santo Domingo", Country: "República Dominicana", City: "Santo Domingo", NationalRank: 2, LogoURL: "https://www.intec.edu.do/logo.png"},
		{Name: "Universidad Autónoma de Santo Domingo", Country: "República Dominicana", City: "Santo Domingo", NationalRank: 3, LogoURL: "https://uasd.edu.do/logo.png"},
		{Name: "Universidad Iberoamericana", Country: "República Dominicana", City: "Santo Domingo", NationalRank: 4, LogoURL: "https://www.unibe.edu.do/logo.png"},
	}
	programs := []model.Program{
		{Name: "Ingeniería en Sistemas"},
		{Name: "Medicina"},
		{Name: "Derecho"},
		{Name: "Administración de Empresas"},
	}

	offerings := []seedOffering{
		{"Pontificia Universidad Católica Madre y Maestra", "Ingeniería en Sistemas", 4, 5500, 2500, 3800, 1200, 220},
		{"Instituto Tecnológico de Santo Domingo", "Ingeniería en Sistemas", 4.5, 6000, 3000, 4200, 1000, 240},
		{"Universidad Autónoma de Santo Domingo", "Ingeniería en Sistemas", 5, 800, 500, 150, 300, 230},
		{"Pontificia Universidad Católica Madre y Maestra", "Medicina", 6, 5500, 2500, 5200, 1200, 300},
		{"Universidad Iberoamericana", "Medicina", 6, 6500, 3500, 5600, 1500, 310},
		{"Universidad Autónoma de Santo Domingo", "Derecho", 4, 800, 500, 150, 300, 180},
		{"Universidad Iberoamericana", "Administración de Empresas", 4, 6500, 3500, 3900, 1500, 200},
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&universities).Error; err != nil {
			return err
		}
		if err := tx.Create(&programs).Error; err != nil {
			return err
		}

		uniIDs := make(map[string]uint, len(universities))
		for _, u := range universities {
			uniIDs[u.Name] = u.ID
		}
		progIDs := make(map[string]uint, len(programs))
		for _, p := range programs {
			progIDs[p.Name] = p.ID
		}

		rows := make([]model.Offering, 0, len(offerings))
		for _, o := range offerings {
			rows = append(rows, model.Offering{
				UniversityID:   uniIDs[o.university],
				ProgramID:      progIDs[o.program],
				DurationYears:  f64(o.years),
				EnrollmentCost: f64(o.enrollment),
				AdmissionCost:  f64(o.admission),
				CreditCost:     f64(o.credit),
				TotalCredits:   intp(o.credits),
				CardCost:       f64(o.card),
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		s.logger.Info("seeded catalog",
			zap.Int("universities", len(universities)),
			zap.Int("programs", len(programs)),
			zap.Int("offerings", len(rows)),
		)
		return nil
	})
}
