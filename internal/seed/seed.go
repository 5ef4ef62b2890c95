package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/gradebook/internal/app/models"
	appRepos "github.com/yigit/gradebook/internal/app/repositories"
	appServices "github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// defaultSubjects is the curriculum created on an empty database
var defaultSubjects = []appModels.Subject{
	{Name: "Bulgarian Language and Literature", ShortName: strPtr("BEL")},
	{Name: "Mathematics", ShortName: strPtr("MATH")},
	{Name: "English Language", ShortName: strPtr("ENG")},
	{Name: "History and Civilization", ShortName: strPtr("HIST")},
	{Name: "Geography and Economics", ShortName: strPtr("GEO")},
	{Name: "Biology and Health Education", ShortName: strPtr("BIO")},
	{Name: "Physics and Astronomy", ShortName: strPtr("PHYS")},
	{Name: "Chemistry and Environmental Protection", ShortName: strPtr("CHEM")},
	{Name: "Information Technology", ShortName: strPtr("IT")},
	{Name: "Physical Education and Sport", ShortName: strPtr("PE")},
}

// CreateDefaultData ensures an administrator exists and, on an empty database,
// creates the default subjects. Errors are joined and the remaining rows still run.
func CreateDefaultData(
	ctx context.Context,
	authService appServices.AuthService,
	subjectRepo appRepos.ISubjectRepository,
	adminEmail, adminPassword string,
	lgr zerolog.Logger,
) error {
	var finalErr error

	created, err := authService.EnsureAdmin(ctx, adminEmail, adminPassword)
	switch {
	case err != nil:
		lgr.Error().Err(err).Str("email", adminEmail).Msg("Error creating default administrator")
		finalErr = errors.Join(finalErr, err)
	case created:
		lgr.Info().Str("email", adminEmail).Msg("Default administrator created")
	}

	existing, err := subjectRepo.List(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error listing subjects")
		return errors.Join(finalErr, err)
	}
	if len(existing) > 0 {
		return finalErr
	}

	lgr.Info().Int("count", len(defaultSubjects)).Msg("Creating default subjects")
	for _, s := range defaultSubjects {
		subject := s
		if err := subjectRepo.Create(ctx, &subject); err != nil && !errors.Is(err, apperrors.ErrConflict) {
			lgr.Error().Err(err).Str("subject", subject.Name).Msg("Error creating default subject")
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}

func strPtr(s string) *string { return &s }
