package models

// MediaModule selects the storage folder of an upload.
type MediaModule string

const (
	MediaProfile     MediaModule = "profile"
	MediaPosts       MediaModule = "posts"
	MediaJobs        MediaModule = "jobs"
	MediaMarketplace MediaModule = "marketplace"
	MediaMatrimony   MediaModule = "matrimony"
	MediaHelp        MediaModule = "help"
)

// Valid reports whether m is a known module.
func (m MediaModule) Valid() bool {
	switch m {
	case MediaProfile, MediaPosts, MediaJobs, MediaMarketplace, MediaMatrimony, MediaHelp:
		return true
	}
	return false
}

// UploadURLRequest is the payload of POST /media/upload-url.
type UploadURLRequest struct {
	FileName string      `json:"fileName"`
	FileType string      `json:"fileType"`
	FileSize int64       `json:"fileSize"`
	Module   MediaModule `json:"module"`
}

// HoroscopeUploadRequest is the payload of POST /profile/me/horoscope-upload-url.
type HoroscopeUploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}

// UploadTarget is a presigned PUT destination and the URL the object will be served from.
type UploadTarget struct {
	UploadURL   string `json:"uploadUrl"`
	PublicURL   string `json:"publicUrl"`
	Key         string `json:"key,omitempty"`
	MediaFileID int64  `json:"mediaFileId,omitempty"`
}
