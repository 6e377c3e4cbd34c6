package chroma

import (
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/fwojciec/cppguts"
)

// StyleFromPalette returns a function that maps chroma token types to
// cppguts styles using the palette's syntax colors.
func StyleFromPalette(p cppguts.Palette) StyleFunc {
	return func(tt chromalib.TokenType) cppguts.Style {
		switch {
		case tt == chromalib.KeywordType:
			return cppguts.Style{Foreground: string(p.Type), Bold: true}
		case tt.InCategory(chromalib.Keyword):
			return cppguts.Style{Foreground: string(p.Keyword), Bold: true}
		case tt.InCategory(chromalib.Comment):
			return cppguts.Style{Foreground: string(p.Comment)}
		case tt.InSubCategory(chromalib.String):
			return cppguts.Style{Foreground: string(p.String)}
		case tt.InSubCategory(chromalib.Number):
			return cppguts.Style{Foreground: string(p.Number)}
		case tt.InCategory(chromalib.Operator):
			return cppguts.Style{Foreground: string(p.Operator)}
		case tt == chromalib.NameFunction, tt == chromalib.NameFunctionMagic:
			return cppguts.Style{Foreground: string(p.Function)}
		case tt == chromalib.NameConstant, tt == chromalib.NameBuiltin:
			return cppguts.Style{Foreground: string(p.Constant)}
		case tt == chromalib.Punctuation:
			return cppguts.Style{Foreground: string(p.Punctuation)}
		default:
			return cppguts.Style{}
		}
	}
}
