// Package block parses the audioset mini-language: the body of an
// ```audioset fenced block that names a clip and its playback directives.
package block
