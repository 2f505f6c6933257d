package meta

import (
	"path/filepath"
	"strings"
)

// rasterExtensions are decodable raster formats. Dimensions come from the
// registered image decoders (stdlib jpeg/png/gif plus x/image bmp/tiff/webp).
var rasterExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".gif":  true,
	".webp": true,
}

// statOnlyExtensions are supported formats with no registered Go decoder.
// They are cataloged from file stats; width and height stay zero.
var statOnlyExtensions = map[string]bool{
	".heic": true,
}

// rawExtensions are camera RAW formats. These are cataloged from file
// stats only; no Go decoder is registered for them.
var rawExtensions = map[string]bool{
	".cr2": true, ".cr3": true, ".nef": true, ".nrw": true, ".arw": true,
	".rw2": true, ".orf": true, ".raf": true, ".sr2": true, ".pef": true,
	".dng": true, ".erf": true, ".3fr": true, ".srw": true, ".x3f": true,
	".mef": true, ".mos": true, ".rwl": true, ".kc2": true,
}

// IsImageFile reports whether the file name carries a supported image or
// RAW extension.
func IsImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return rasterExtensions[ext] || statOnlyExtensions[ext] || rawExtensions[ext]
}

// isDecodable reports whether a registered decoder can read the format.
func isDecodable(name string) bool {
	return rasterExtensions[strings.ToLower(filepath.Ext(name))]
}

// isStatOnly reports whether the format is cataloged without decoding.
func isStatOnly(name string) bool {
	return statOnlyExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsRawFile reports whether the file name carries a camera RAW extension.
func IsRawFile(name string) bool {
	return rawExtensions[strings.ToLower(filepath.Ext(name))]
}
