package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"balagh/internal/models"
	"balagh/internal/storage"
)

// Storage keys, one per persisted entity
const (
	KeyUser                 = "user"
	KeyChildProfiles        = "childProfiles"
	KeySelectedChildProfile = "selectedChildProfile"
	KeyParentPreferences    = "parentPreferences"
	KeyKidsProgress         = "kidsProgress"
	KeyLanguage             = "language"
	KeyExperience           = "experience"
)

// ErrMalformedState marks a stored value that could not be decoded
var ErrMalformedState = errors.New("malformed stored state")

// StateRepository reads and writes device state through a key/value store.
// Load methods return a nil value when the key is absent.
type StateRepository struct {
	store storage.Store
}

func NewStateRepository(store storage.Store) *StateRepository {
	return &StateRepository{store: store}
}

func (r *StateRepository) load(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformedState, key, err)
	}
	return true, nil
}

func (r *StateRepository) save(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (r *StateRepository) Delete(ctx context.Context, key string) error {
	if err := r.store.Remove(ctx, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (r *StateRepository) LoadUser(ctx context.Context) (*models.User, error) {
	var u models.User
	ok, err := r.load(ctx, KeyUser, &u)
	if !ok || err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: %s: missing id", ErrMalformedState, KeyUser)
	}
	return &u, nil
}

func (r *StateRepository) SaveUser(ctx context.Context, u *models.User) error {
	return r.save(ctx, KeyUser, u)
}

func (r *StateRepository) LoadChildProfiles(ctx context.Context) ([]models.ChildProfile, error) {
	var profiles []models.ChildProfile
	if _, err := r.load(ctx, KeyChildProfiles, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *StateRepository) SaveChildProfiles(ctx context.Context, profiles []models.ChildProfile) error {
	if profiles == nil {
		profiles = []models.ChildProfile{}
	}
	return r.save(ctx, KeyChildProfiles, profiles)
}

func (r *StateRepository) LoadSelectedChild(ctx context.Context) (*models.ChildProfile, error) {
	var c models.ChildProfile
	ok, err := r.load(ctx, KeySelectedChildProfile, &c)
	if !ok || err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *StateRepository) SaveSelectedChild(ctx context.Context, c *models.ChildProfile) error {
	return r.save(ctx, KeySelectedChildProfile, c)
}

func (r *StateRepository) LoadParentPreferences(ctx context.Context) (*models.ParentPreferences, error) {
	var p models.ParentPreferences
	ok, err := r.load(ctx, KeyParentPreferences, &p)
	if !ok || err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *StateRepository) SaveParentPreferences(ctx context.Context, p *models.ParentPreferences) error {
	return r.save(ctx, KeyParentPreferences, p)
}

func (r *StateRepository) LoadKidsProgress(ctx context.Context) (*models.KidsProgress, error) {
	p := models.NewKidsProgress()
	ok, err := r.load(ctx, KeyKidsProgress, &p)
	if !ok || err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

func (r *StateRepository) SaveKidsProgress(ctx context.Context, p models.KidsProgress) error {
	return r.save(ctx, KeyKidsProgress, p)
}

// LoadLanguage returns the stored code as written, or "" when absent.
// The language is stored as a bare string, not JSON.
func (r *StateRepository) LoadLanguage(ctx context.Context) (string, error) {
	raw, ok, err := r.store.Get(ctx, KeyLanguage)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", KeyLanguage, err)
	}
	if !ok {
		return "", nil
	}
	return string(raw), nil
}

func (r *StateRepository) SaveLanguage(ctx context.Context, code string) error {
	if err := r.store.Set(ctx, KeyLanguage, []byte(code)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyLanguage, err)
	}
	return nil
}

func (r *StateRepository) LoadExperience(ctx context.Context) (models.Experience, error) {
	var s string
	if _, err := r.load(ctx, KeyExperience, &s); err != nil {
		return models.ExperienceNone, err
	}
	e, ok := models.ParseExperience(s)
	if !ok {
		return models.ExperienceNone, fmt.Errorf("%w: %s: unknown mode %q", ErrMalformedState, KeyExperience, s)
	}
	return e, nil
}

func (r *StateRepository) SaveExperience(ctx context.Context, e models.Experience) error {
	return r.save(ctx, KeyExperience, string(e))
}
