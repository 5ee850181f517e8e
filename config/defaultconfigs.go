package config

// Search depth bounds accepted from the config file and flags.
const (
	MinDepth = 1
	MaxDepth = 10
)

var DefaultConfig Config
var DefaultTheme Theme

func init() {
	DefaultTheme = Theme{
		DrawCursorBackground:     true,
		DrawLastPlayedBackground: true,
		ShowLegalMoves:           true,
		Colors: ConfigColors{
			BoardColor:        28,
			BoardColorAlt:     22,
			BlackColor:        232,
			WhiteColor:        255,
			LineColor:         22,
			HintColor:         148,
			CursorColorFG:     2,
			CursorColorBG:     4,
			LastPlayedColorBG: 130,
		},
		Symbols: ConfigSymbols{
			BlackDisc:   '●',
			WhiteDisc:   '●',
			EmptySquare: '·',
			LegalHint:   '∙',
		},
	}

	DefaultConfig = Config{
		Theme: DefaultTheme,
		Engine: EngineConfig{
			Depth:        5,
			DefaultColor: 1,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
