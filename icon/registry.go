package icon

import (
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/style"
)

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Info
	Progress
	Play
	Pause
	Completed
	NotStarted
	InProgress
	Certificate
	Comment
	Course
	Muted
	Volume
	Fullscreen
)

var (
	green  = style.Fg(color.Green)
	red    = style.Fg(color.Red)
	yellow = style.Fg(color.Yellow)
	blue   = style.Fg(color.Blue)
	gold   = style.Fg(color.Gold)
	faint  = style.Faint
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "✅",
		nerd:    green(""),
		plain:   green("OK"),
		kaomoji: green("(ᵔ◡ᵔ)"),
		squares: green("▣"),
	},
	Fail: {
		emoji:   "❌",
		nerd:    red(""),
		plain:   red("ERR"),
		kaomoji: red("(╯°□°)╯"),
		squares: red("▨"),
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    yellow(""),
		plain:   yellow("!"),
		kaomoji: yellow("(・_・;)"),
		squares: yellow("▤"),
	},
	Info: {
		emoji:   "ℹ️",
		nerd:    blue(""),
		plain:   blue("i"),
		kaomoji: blue("(・ω・)"),
		squares: blue("▢"),
	},
	Progress: {
		emoji:   "⏳",
		nerd:    blue(""),
		plain:   blue("..."),
		kaomoji: blue("(￣▽￣)ノ"),
		squares: blue("▥"),
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(ﾉ◕ヮ◕)ﾉ",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "⏸",
	},
	Completed: {
		emoji:   "✅",
		nerd:    green(""),
		plain:   green("[x]"),
		kaomoji: green("(•̀ᴗ•́)و"),
		squares: green("■"),
	},
	NotStarted: {
		emoji:   "⬜",
		nerd:    faint(""),
		plain:   faint("[ ]"),
		kaomoji: faint("(・・)"),
		squares: faint("□"),
	},
	InProgress: {
		emoji:   "🔵",
		nerd:    blue(""),
		plain:   blue("[~]"),
		kaomoji: blue("(๑•̀ㅂ•́)"),
		squares: blue("◧"),
	},
	Certificate: {
		emoji:   "🎓",
		nerd:    gold(""),
		plain:   gold("*"),
		kaomoji: gold("＼(^o^)／"),
		squares: gold("◆"),
	},
	Comment: {
		emoji:   "💬",
		nerd:    "",
		plain:   "#",
		kaomoji: "(・o・)",
		squares: "▭",
	},
	Course: {
		emoji:   "📚",
		nerd:    "",
		plain:   "=",
		kaomoji: "φ(．．)",
		squares: "▤",
	},
	Muted: {
		emoji:   "🔇",
		nerd:    "",
		plain:   "mute",
		kaomoji: "(´-ω-`)",
		squares: "▯",
	},
	Volume: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "vol",
		kaomoji: "ヽ(°〇°)ﾉ",
		squares: "▮",
	},
	Fullscreen: {
		emoji:   "🖥️",
		nerd:    "",
		plain:   "[ ]",
		kaomoji: "[(ಠ_ಠ)]",
		squares: "⛶",
	},
}
