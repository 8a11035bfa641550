/*
Copyright © 2025 the WindsAloft authors.
This file is part of WindsAloft.

WindsAloft is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WindsAloft is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WindsAloft.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package windsaloft resamples three-dimensional atmospheric model output
// (geopotential height, wind components, and temperature on pressure levels)
// onto a ladder of aviation flight levels, deriving wind speed and direction
// at every grid point.
package windsaloft

// Version gives the version number.
const Version = "1.2.1"
