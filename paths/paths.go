// This file is part of chismaker.
//
// chismaker is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// chismaker is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with chismaker.  If not, see <https://www.gnu.org/licenses/>.

// Package paths resolves where chismaker keeps its on-disk resources (the
// QA configuration file, in practice) relative to the user's home
// directory.
package paths

import (
	"os"
	"path/filepath"
)

// resourceDir is the directory, relative to the user's home directory, that
// chismaker resources are stored under.
const resourceDir = ".chismaker"

// ResourcePath builds a path of the form ~/.chismaker/<subPath>/<file>,
// omitting path elements that are the empty string.
func ResourcePath(subPath string, file string) (string, error) {
	parts := []string{resourceDir}
	if subPath != "" {
		parts = append(parts, subPath)
	}
	if file != "" {
		parts = append(parts, file)
	}
	return filepath.Join(parts...), nil
}

// ResourcePathAbs is like ResourcePath but rooted at the user's home
// directory rather than returning a path relative to it.
func ResourcePathAbs(subPath string, file string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	rel, err := ResourcePath(subPath, file)
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rel), nil
}
