package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"balagh/internal/locale"
	"balagh/internal/metrics"
	"balagh/internal/models"
	"balagh/internal/progress"
	"balagh/internal/repository"
	"balagh/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrNotAuthenticated      = errors.New("not signed in")
	ErrChildProfileNotFound  = errors.New("child profile not found")
	ErrDuplicateChildProfile = errors.New("child profile already exists")
	ErrUnsupportedLanguage   = locale.ErrUnsupported
	ErrInvalidAccountType    = errors.New("invalid account type")
)

// Options configures an AppState. Zero values fall back to defaults, except
// AuthLatency where zero means no delay. Login and signup wait AuthLatency to
// stand in for a server round trip.
type Options struct {
	Now             func() time.Time
	Location        *time.Location
	AuthLatency     time.Duration
	Direction       locale.DirectionApplier
	DefaultLanguage locale.Language
	Metrics         metrics.Recorder
	NewID           func() string
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.DefaultLanguage == "" {
		o.DefaultLanguage = locale.Default
	}
	if o.Direction == nil {
		o.Direction = locale.NewDocument(o.DefaultLanguage)
	}
	if o.Metrics == nil {
		o.Metrics = metrics.Nop{}
	}
	if o.NewID == nil {
		o.NewID = newID
	}
	return o
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// AppState is the session and progress state of one device. Every method is
// safe for concurrent use and each mutation is persisted before it returns.
type AppState struct {
	mu   sync.RWMutex
	repo *repository.StateRepository
	opts Options

	authenticated bool
	user          *models.User
	experience    models.Experience
	childProfiles []models.ChildProfile
	selectedChild *models.ChildProfile
	parentPrefs   *models.ParentPreferences
	kidsProgress  models.KidsProgress
	adultsProfile models.AdultsProfile
	language      locale.Language
}

// NewAppState rehydrates device state from repo. Values that cannot be
// decoded are discarded; storage failures are returned.
func NewAppState(ctx context.Context, repo *repository.StateRepository, opts Options) (*AppState, error) {
	s := &AppState{
		repo:          repo,
		opts:          opts.withDefaults(),
		kidsProgress:  models.NewKidsProgress(),
		adultsProfile: models.NewAdultsProfile(),
	}
	s.language = s.opts.DefaultLanguage

	if err := s.rehydrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to rehydrate state: %w", err)
	}
	return s, nil
}

func (s *AppState) rehydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repo.LoadUser(ctx)
	if err := s.discardMalformed(repository.KeyUser, err); err != nil {
		return err
	}
	experience, err := s.repo.LoadExperience(ctx)
	if err := s.discardMalformed(repository.KeyExperience, err); err != nil {
		return err
	}
	profiles, err := s.repo.LoadChildProfiles(ctx)
	if err := s.discardMalformed(repository.KeyChildProfiles, err); err != nil {
		return err
	}
	selected, err := s.repo.LoadSelectedChild(ctx)
	if err := s.discardMalformed(repository.KeySelectedChildProfile, err); err != nil {
		return err
	}
	prefs, err := s.repo.LoadParentPreferences(ctx)
	if err := s.discardMalformed(repository.KeyParentPreferences, err); err != nil {
		return err
	}
	kp, err := s.repo.LoadKidsProgress(ctx)
	if err := s.discardMalformed(repository.KeyKidsProgress, err); err != nil {
		return err
	}
	code, err := s.repo.LoadLanguage(ctx)
	if err != nil {
		return err
	}

	s.user = user
	s.authenticated = user != nil
	s.experience = experience
	s.childProfiles = profiles
	s.parentPrefs = prefs
	if kp != nil {
		s.kidsProgress = *kp
	}
	if code != "" {
		lang, err := locale.Parse(code)
		if err != nil {
			s.discardMalformed(repository.KeyLanguage, fmt.Errorf("%w: %s: %q", repository.ErrMalformedState, repository.KeyLanguage, code))
		} else {
			s.language = lang
		}
	}

	// The selection is only meaningful while it still names a stored profile
	if selected != nil {
		if i := s.indexOfChild(selected.ID); i >= 0 {
			c := s.childProfiles[i]
			s.selectedChild = &c
		} else if err := s.repo.Delete(ctx, repository.KeySelectedChildProfile); err != nil {
			return err
		}
	}

	s.opts.Direction.ApplyDirection(s.language, s.language.Direction())

	// Opening the app counts as activity for the daily streak. A device with
	// nothing stored yet keeps it in memory until its first write.
	next := s.kidsProgress.Clone()
	progress.ApplyStreak(&next, s.today())
	if kp != nil || user != nil {
		if err := s.repo.SaveKidsProgress(ctx, next); err != nil {
			return err
		}
	}
	s.kidsProgress = next
	return nil
}

func (s *AppState) discardMalformed(key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrMalformedState) {
		log.Printf("Warning: discarding stored %s: %v", key, err)
		s.opts.Metrics.RecordMalformedState(key)
		return nil
	}
	return err
}

func (s *AppState) today() progress.Date {
	return progress.DateOf(s.opts.Now().In(s.opts.Location))
}

func (s *AppState) simulateLatency() {
	if s.opts.AuthLatency > 0 {
		time.Sleep(s.opts.AuthLatency)
	}
}

func (s *AppState) indexOfChild(id string) int {
	for i, c := range s.childProfiles {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Login signs the device in. Any well-formed email with a non-empty password
// is accepted. A user already stored on the device is resumed as a returning
// user; otherwise a new first-time Adult user is created.
func (s *AppState) Login(ctx context.Context, email, password, displayName string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateLoginPassword(password); err != nil {
		return nil, err
	}
	s.simulateLatency()
	return s.signIn(ctx, strings.TrimSpace(email), strings.TrimSpace(displayName))
}

// LoginWithProvider signs in an identity already verified by an OAuth provider
func (s *AppState) LoginWithProvider(ctx context.Context, email, displayName string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	return s.signIn(ctx, strings.TrimSpace(email), strings.TrimSpace(displayName))
}

func (s *AppState) signIn(ctx context.Context, email, displayName string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.LoadUser(ctx)
	if err := s.discardMalformed(repository.KeyUser, err); err != nil {
		return nil, err
	}

	var u models.User
	if existing != nil {
		u = *existing
		if u.Name == "" {
			u.Name = nameOrEmail(displayName, email)
		}
		u.HasChildren = len(s.childProfiles) > 0
		u.IsFirstTime = false
	} else {
		u = models.User{
			ID:          s.opts.NewID(),
			Name:        nameOrEmail(displayName, email),
			Email:       email,
			Role:        models.RoleAdult,
			HasChildren: false,
			Language:    string(s.language),
			IsFirstTime: true,
		}
	}

	if err := s.setUserLocked(ctx, &u); err != nil {
		return nil, err
	}
	s.opts.Metrics.RecordLogin(u.IsFirstTime)
	return s.userCopy(), nil
}

func nameOrEmail(name, email string) string {
	if name != "" {
		return name
	}
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

// Signup always creates a new first-time user, replacing any stored one
func (s *AppState) Signup(ctx context.Context, name, email, password string, isParent bool) (*models.User, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateSignupPassword(password); err != nil {
		return nil, err
	}
	s.simulateLatency()

	s.mu.Lock()
	defer s.mu.Unlock()

	role := models.RoleAdult
	if isParent {
		role = models.RoleParent
	}
	u := models.User{
		ID:          s.opts.NewID(),
		Name:        strings.TrimSpace(name),
		Email:       strings.TrimSpace(email),
		Role:        role,
		HasChildren: false,
		Language:    string(s.language),
		IsFirstTime: true,
	}
	if err := s.setUserLocked(ctx, &u); err != nil {
		return nil, err
	}
	s.opts.Metrics.RecordSignup(isParent)
	return s.userCopy(), nil
}

// Logout clears the signed-in user together with the experience, child
// profiles, selection and parent preferences. Kids progress and the
// language are kept.
func (s *AppState) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = false
	s.user = nil
	s.experience = models.ExperienceNone
	s.selectedChild = nil
	s.childProfiles = nil
	s.parentPrefs = nil

	var errs []error
	for _, key := range []string{
		repository.KeyUser,
		repository.KeyExperience,
		repository.KeySelectedChildProfile,
		repository.KeyChildProfiles,
		repository.KeyParentPreferences,
	} {
		if err := s.repo.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	s.opts.Metrics.RecordLogout()
	return errors.Join(errs...)
}

// SetUser replaces the signed-in user, or signs out the user alone when u is nil
func (s *AppState) SetUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setUserLocked(ctx, u)
}

func (s *AppState) setUserLocked(ctx context.Context, u *models.User) error {
	if u == nil {
		if err := s.repo.Delete(ctx, repository.KeyUser); err != nil {
			return err
		}
		s.user = nil
		s.authenticated = false
		return nil
	}

	normalized := models.User{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		HasChildren: u.HasChildren,
		Language:    string(locale.ParseOr(u.Language, s.language)),
		IsFirstTime: u.IsFirstTime,
	}
	if normalized.ID == "" {
		normalized.ID = s.opts.NewID()
	}
	if !normalized.Role.Valid() {
		normalized.Role = models.RoleAdult
	}

	if err := s.repo.SaveUser(ctx, &normalized); err != nil {
		return err
	}
	s.user = &normalized
	s.authenticated = true
	return nil
}

// updateUserLocked applies fn to a copy of the current user and stores it
func (s *AppState) updateUserLocked(ctx context.Context, fn func(u *models.User)) error {
	if s.user == nil {
		return ErrNotAuthenticated
	}
	u := *s.user
	fn(&u)
	return s.setUserLocked(ctx, &u)
}

// AddChildProfile appends p and marks the user as having children. An empty
// ID is assigned a new one.
func (s *AppState) AddChildProfile(ctx context.Context, p models.ChildProfile) (models.ChildProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.opts.NewID()
	}
	if s.indexOfChild(p.ID) >= 0 {
		return models.ChildProfile{}, ErrDuplicateChildProfile
	}

	profiles := append(append([]models.ChildProfile{}, s.childProfiles...), p)
	if err := s.repo.SaveChildProfiles(ctx, profiles); err != nil {
		return models.ChildProfile{}, err
	}
	s.childProfiles = profiles

	if s.user != nil {
		if err := s.updateUserLocked(ctx, func(u *models.User) { u.HasChildren = true }); err != nil {
			return models.ChildProfile{}, err
		}
	}
	return p, nil
}

// RemoveChildProfile deletes the profile with id and clears the selection if
// it pointed at that profile.
func (s *AppState) RemoveChildProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfChild(id)
	if i < 0 {
		return ErrChildProfileNotFound
	}

	profiles := make([]models.ChildProfile, 0, len(s.childProfiles)-1)
	profiles = append(profiles, s.childProfiles[:i]...)
	profiles = append(profiles, s.childProfiles[i+1:]...)
	if err := s.repo.SaveChildProfiles(ctx, profiles); err != nil {
		return err
	}
	s.childProfiles = profiles

	if s.selectedChild != nil && s.selectedChild.ID == id {
		if err := s.repo.Delete(ctx, repository.KeySelectedChildProfile); err != nil {
			return err
		}
		s.selectedChild = nil
	}

	if s.user != nil && s.user.HasChildren != (len(profiles) > 0) {
		return s.updateUserLocked(ctx, func(u *models.User) { u.HasChildren = len(profiles) > 0 })
	}
	return nil
}

// SetSelectedChildProfile selects the stored profile with p's ID, or clears
// the selection when p is nil.
func (s *AppState) SetSelectedChildProfile(ctx context.Context, p *models.ChildProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == nil {
		if err := s.repo.Delete(ctx, repository.KeySelectedChildProfile); err != nil {
			return err
		}
		s.selectedChild = nil
		return nil
	}

	i := s.indexOfChild(p.ID)
	if i < 0 {
		return ErrChildProfileNotFound
	}
	c := s.childProfiles[i]
	if err := s.repo.SaveSelectedChild(ctx, &c); err != nil {
		return err
	}
	s.selectedChild = &c
	return nil
}

// SetParentPreferences replaces the parent preferences
func (s *AppState) SetParentPreferences(ctx context.Context, prefs models.ParentPreferences) error {
	prefs.ChildLanguage = string(locale.ParseOr(prefs.ChildLanguage, locale.Default))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveParentPreferences(ctx, &prefs); err != nil {
		return err
	}
	s.parentPrefs = &prefs
	return nil
}

// SetLanguage switches the UI language and applies its text direction
func (s *AppState) SetLanguage(ctx context.Context, code string) error {
	lang, err := locale.Parse(code)
	if err != nil {
		return ErrUnsupportedLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLanguageLocked(ctx, lang)
}

func (s *AppState) setLanguageLocked(ctx context.Context, lang locale.Language) error {
	if err := s.repo.SaveLanguage(ctx, string(lang)); err != nil {
		return err
	}
	s.language = lang
	s.opts.Direction.ApplyDirection(lang, lang.Direction())
	return nil
}

// SetExperience switches between the kids and adults experience
func (s *AppState) SetExperience(ctx context.Context, e models.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if e == models.ExperienceNone {
		err = s.repo.Delete(ctx, repository.KeyExperience)
	} else {
		err = s.repo.SaveExperience(ctx, e)
	}
	if err != nil {
		return err
	}
	s.experience = e
	return nil
}

// UpdateKidsProgress merges u into the progress and then records today's
// activity for the daily streak. A level in u is dropped; levels are only
// gained through AwardGame.
func (s *AppState) UpdateKidsProgress(ctx context.Context, u models.ProgressUpdate) (models.KidsProgress, error) {
	u.Level = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateProgressLocked(ctx, u)
}

func (s *AppState) updateProgressLocked(ctx context.Context, u models.ProgressUpdate) (models.KidsProgress, error) {
	before := s.kidsProgress
	next := before.Clone()
	next.Apply(u)
	progress.ApplyStreak(&next, s.today())

	if err := s.repo.SaveKidsProgress(ctx, next); err != nil {
		return before.Clone(), err
	}
	s.kidsProgress = next

	s.opts.Metrics.RecordStarsAwarded(next.Stars - before.Stars)
	for i := before.Level; i < next.Level; i++ {
		s.opts.Metrics.RecordLevelUp()
	}
	s.opts.Metrics.RecordStreak(next.DailyStreak)
	return next.Clone(), nil
}

// AwardGame adds the stars earned in one game. Reaching the level-up
// threshold in a single award also gains a level.
func (s *AppState) AwardGame(ctx context.Context, earned int) (models.KidsProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateProgressLocked(ctx, progress.GameAward(s.kidsProgress, earned))
}

// AwardBadge records a badge; awarding one twice is a no-op apart from the streak
func (s *AppState) AwardBadge(ctx context.Context, badge string) (models.KidsProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateProgressLocked(ctx, models.ProgressUpdate{Badges: []string{badge}})
}

// EnterCategory records the category the child is playing; "" clears it
func (s *AppState) EnterCategory(ctx context.Context, category string) (models.KidsProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateProgressLocked(ctx, models.ProgressUpdate{CurrentCategory: &category})
}

// ConfirmLanguage is the first setup step: it sets the UI language and
// stores it on the user.
func (s *AppState) ConfirmLanguage(ctx context.Context, code string) error {
	lang, err := locale.Parse(code)
	if err != nil {
		return ErrUnsupportedLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrNotAuthenticated
	}
	if err := s.setLanguageLocked(ctx, lang); err != nil {
		return err
	}
	return s.updateUserLocked(ctx, func(u *models.User) { u.Language = string(lang) })
}

// SelectAccountType sets the role from the account type chosen during setup
func (s *AppState) SelectAccountType(ctx context.Context, t models.UserType) (*models.User, error) {
	role, ok := models.RoleFor(t)
	if !ok {
		return nil, ErrInvalidAccountType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.updateUserLocked(ctx, func(u *models.User) {
		u.Role = role
		u.HasChildren = role == models.RoleParent && len(s.childProfiles) > 0
	})
	if err != nil {
		return nil, err
	}
	return s.userCopy(), nil
}

// CompleteSetup ends the first-run flow
func (s *AppState) CompleteSetup(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateUserLocked(ctx, func(u *models.User) { u.IsFirstTime = false }); err != nil {
		return nil, err
	}
	return s.userCopy(), nil
}

func (s *AppState) userCopy() *models.User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AppState) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns a copy of the signed-in user, or nil
func (s *AppState) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userCopy()
}

// Role returns the user's role, or "" when signed out
func (s *AppState) Role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *AppState) IsFirstTime() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsFirstTime
}

func (s *AppState) Experience() models.Experience {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.experience
}

func (s *AppState) ChildProfiles() []models.ChildProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChildProfile{}, s.childProfiles...)
}

func (s *AppState) SelectedChildProfile() *models.ChildProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedChild == nil {
		return nil
	}
	c := *s.selectedChild
	return &c
}

// ParentPreferences returns the stored preferences, or nil if never set
func (s *AppState) ParentPreferences() *models.ParentPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.parentPrefs == nil {
		return nil
	}
	p := *s.parentPrefs
	return &p
}

func (s *AppState) KidsProgress() models.KidsProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kidsProgress.Clone()
}

func (s *AppState) AdultsProfile() models.AdultsProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adultsProfile.Clone()
}

func (s *AppState) Language() locale.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// Snapshot is a consistent copy of the whole state
type Snapshot struct {
	Authenticated     bool
	User              *models.User
	Experience        models.Experience
	ChildProfiles     []models.ChildProfile
	SelectedChild     *models.ChildProfile
	ParentPreferences *models.ParentPreferences
	KidsProgress      models.KidsProgress
	AdultsProfile     models.AdultsProfile
	Language          locale.Language
}

// Snapshot copies the state under a single read lock
func (s *AppState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Authenticated: s.authenticated,
		User:          s.userCopy(),
		Experience:    s.experience,
		ChildProfiles: append([]models.ChildProfile{}, s.childProfiles...),
		KidsProgress:  s.kidsProgress.Clone(),
		AdultsProfile: s.adultsProfile.Clone(),
		Language:      s.language,
	}
	if s.selectedChild != nil {
		c := *s.selectedChild
		snap.SelectedChild = &c
	}
	if s.parentPrefs != nil {
		p := *s.parentPrefs
		snap.ParentPreferences = &p
	}
	return snap
}
