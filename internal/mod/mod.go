package mod

import (
	"errors"
	"fmt"

	"localization-editor/internal/filewalker"
	"localization-editor/internal/resolver"

	"github.com/rs/zerolog/log"
)

// ErrOpenMod is returned when the selected game or mod directory cannot be loaded.
var ErrOpenMod = errors.New("could not open the selected mod")

// Location is the pair of directories an editing session works on.
type Location struct {
	GameRoot string `yaml:"game_path"`
	ModRoot  string `yaml:"mod_path"`
}

// Validate checks that both roots are set.
func (l Location) Validate() error {
	if l.GameRoot == "" {
		return errors.New("game path is not set")
	}
	if l.ModRoot == "" {
		return errors.New("mod path is not set")
	}
	return nil
}

// Mod is everything loaded for one editing session.
type Mod struct {
	Location     Location
	GameDir      string
	ModDir       string
	Localization *resolver.Localization
}

// Load resolves the localisation of the mod at loc. The localisation folder is
// looked up separately under each root since mods do not always spell it like the game.
func Load(loc Location, opts ...resolver.Option) (*Mod, error) {
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenMod, err)
	}

	gameDir, err := filewalker.FindLocalisationDir(loc.GameRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenMod, err)
	}
	modDir, err := filewalker.FindLocalisationDir(loc.ModRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenMod, err)
	}

	localization, err := resolver.Resolve(gameDir, modDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenMod, err)
	}

	log.Info().Str("game", loc.GameRoot).Str("mod", loc.ModRoot).Msg("Mod loaded")
	return &Mod{
		Location:     loc,
		GameDir:      gameDir,
		ModDir:       modDir,
		Localization: localization,
	}, nil
}
