// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package extractor

import (
	"path"
	"strings"

	"github.com/kraklabs/isograph/internal/model"
)

// testFileMarkers are per-language conventions for a file being test code
// rather than production code.
var testFileMarkers = []string{
	"_test.go",
	"_test.py",
	"test_",
	".test.js",
	".test.ts",
	".spec.js",
	".spec.ts",
	"Test.java",
	"Tests.cs",
	"_spec.rb",
	"Test.swift",
}

var testDirMarkers = []string{"test/", "tests/", "spec/", "__tests__/", "testdata/"}

// ClassifyEntityClass decides whether entities found in normalizedPath
// belong to production code or test code, from filename/directory
// convention alone — it never inspects file content.
func ClassifyEntityClass(normalizedPath string) model.EntityClass {
	base := path.Base(normalizedPath)
	for _, marker := range testFileMarkers {
		if strings.Contains(base, marker) {
			return model.ClassTest
		}
	}
	lower := "/" + strings.ToLower(normalizedPath) + "/"
	for _, dirMarker := range testDirMarkers {
		if strings.Contains(lower, "/"+dirMarker) {
			return model.ClassTest
		}
	}
	return model.ClassCode
}
