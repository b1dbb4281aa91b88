// Package upload validates attachment uploads before they reach the object
// store. Validation is whitelist-first: extension, size, declared MIME type
// and leading content bytes all have to agree before a file is accepted.
package upload

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxFileSize is the upload ceiling, 10MB.
const MaxFileSize = 10 * 1024 * 1024

var allowedExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {}, ".svg": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".txt": {}, ".rtf": {},
	".xls": {}, ".xlsx": {}, ".csv": {},
}

var allowedMIMETypes = map[string]struct{}{
	"image/jpeg": {}, "image/jpg": {}, "image/png": {}, "image/gif": {},
	"image/webp": {}, "image/bmp": {}, "image/svg+xml": {}, "image/x-icon": {},
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {}, "text/rtf": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"text/csv": {},
}

// dangerousExtensions are rejected before the whitelist is consulted so the
// error message names the real reason.
var dangerousExtensions = map[string]struct{}{
	".exe": {}, ".bat": {}, ".cmd": {}, ".com": {}, ".scr": {}, ".vbs": {}, ".js": {}, ".jar": {},
	".msi": {}, ".dll": {}, ".sys": {}, ".drv": {}, ".pif": {}, ".app": {}, ".deb": {}, ".rpm": {},
	".sh": {}, ".bash": {}, ".zsh": {}, ".ps1": {}, ".py": {}, ".pyc": {}, ".pyo": {}, ".php": {},
	".pl": {}, ".rb": {}, ".asp": {}, ".aspx": {}, ".jsp": {}, ".cgi": {}, ".htaccess": {},
	".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	".dmg": {}, ".iso": {}, ".bin": {}, ".run": {}, ".apk": {}, ".ipa": {}, ".msp": {}, ".mst": {},
}

// magicBytes maps extensions to accepted leading signatures. An empty slice
// means the type has no signature (plain text).
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {[]byte("GIF87a"), []byte("GIF89a")},
	".pdf":  {[]byte("%PDF")},
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	".docx": {[]byte("PK\x03\x04")},
	".xlsx": {[]byte("PK\x03\x04")},
	".txt":  {},
	".webp": {[]byte("RIFF")},
}

var executableSignatures = [][]byte{
	[]byte("MZ"),
	{0x7F, 'E', 'L', 'F'},
	[]byte("#!/bin/"),
	[]byte("#!/usr/bin/"),
	[]byte("<script"),
	[]byte("<?php"),
	[]byte("<%@"),
	[]byte("<%"),
}

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename strips path components and control characters and caps
// length at 255 runes. An empty result becomes "uploaded_file".
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, ". ")
	if len(name) > 255 {
		ext := filepath.Ext(name)
		name = name[:250] + ext
	}
	if name == "" {
		name = "uploaded_file"
	}
	return name
}

// Validate checks filename, size, declared content type and the leading
// bytes of the payload. It returns the sanitized filename on success.
func Validate(filename, contentType string, size int64, head []byte) (string, error) {
	name := SanitizeFilename(filename)
	ext := strings.ToLower(filepath.Ext(name))

	if ext == "" {
		return "", fmt.Errorf("file must have an extension")
	}
	if _, bad := dangerousExtensions[ext]; bad {
		return "", fmt.Errorf("file type %q is not allowed for security reasons", ext)
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}

	if size <= 0 {
		return "", fmt.Errorf("file is empty")
	}
	if size > MaxFileSize {
		return "", fmt.Errorf("file size exceeds maximum allowed size of %dMB", MaxFileSize/(1024*1024))
	}

	mime := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if mime == "" {
		return "", fmt.Errorf("file content type could not be determined")
	}
	if _, ok := allowedMIMETypes[mime]; !ok {
		return "", fmt.Errorf("file type %q is not allowed", mime)
	}

	if err := checkMagicBytes(ext, head); err != nil {
		return "", err
	}
	if err := checkExecutableContent(head); err != nil {
		return "", err
	}
	return name, nil
}

func checkMagicBytes(ext string, head []byte) error {
	signatures, known := magicBytes[ext]
	if !known || len(signatures) == 0 {
		return nil
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(head, sig) {
			return nil
		}
	}
	return fmt.Errorf("file content does not match expected file type %q", ext)
}

func checkExecutableContent(head []byte) error {
	if len(head) == 0 {
		return fmt.Errorf("file is empty")
	}
	window := head
	if len(window) > 100 {
		window = window[:100]
	}
	for _, sig := range executableSignatures {
		if bytes.Contains(window, sig) {
			return fmt.Errorf("file contains executable code and is not allowed")
		}
	}
	return nil
}
