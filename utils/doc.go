// Package utils provides time formatting helpers shared by the SIRI output.
package utils
