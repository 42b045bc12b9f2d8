package services

import (
	"os/exec"
	"runtime"
	"strings"
)

// PrinterInfo describes an installed printer
type PrinterInfo struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

// DetectPrinters lists the printers installed on this machine so the setup
// screen can offer a selection. Errors yield an empty list, not a failure.
func (s *PrinterService) DetectPrinters() []PrinterInfo {
	switch runtime.GOOS {
	case "windows":
		return s.detectWindowsPrinters()
	case "darwin", "linux":
		return s.detectCUPSPrinters()
	default:
		return []PrinterInfo{}
	}
}

func (s *PrinterService) detectWindowsPrinters() []PrinterInfo {
	cmd := exec.Command("powershell", "-NoProfile", "-Command",
		"Get-Printer | Select-Object -ExpandProperty Name")
	output, err := cmd.Output()
	if err != nil {
		s.logger.LogWarning("Could not enumerate printers", err.Error())
		return []PrinterInfo{}
	}

	var printers []PrinterInfo
	for _, line := range strings.Split(string(output), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		printers = append(printers, PrinterInfo{Name: name})
	}
	return printers
}

func (s *PrinterService) detectCUPSPrinters() []PrinterInfo {
	output, err := exec.Command("lpstat", "-p").Output()
	if err != nil {
		s.logger.LogWarning("Could not enumerate printers", err.Error())
		return []PrinterInfo{}
	}

	defaultName := ""
	if defOut, err := exec.Command("lpstat", "-d").Output(); err == nil {
		// Output looks like "system default destination: PrinterName"
		parts := strings.SplitN(strings.TrimSpace(string(defOut)), ":", 2)
		if len(parts) == 2 {
			defaultName = strings.TrimSpace(parts[1])
		}
	}

	var printers []PrinterInfo
	for _, line := range strings.Split(string(output), "\n") {
		// Lines look like "printer PrinterName is idle. ..."
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "printer" {
			continue
		}
		printers = append(printers, PrinterInfo{
			Name:      fields[1],
			IsDefault: fields[1] == defaultName,
		})
	}
	return printers
}
