// Package viz renders simulation output in the terminal: static ascii
// charts for saved results and a live view that streams samples while a
// solve is running.
package viz
