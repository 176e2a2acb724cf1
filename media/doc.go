// Package media cuts time ranges out of stored recordings with ffmpeg.
package media
