package buildx

import "strings"

// exporterType extracts the "type" attribute from an output spec like
// "type=local,dest=./out". A bare spec without attributes has no type.
func exporterType(spec string) string {
	for _, attr := range strings.Split(spec, ",") {
		attr = strings.TrimSpace(attr)
		if v, ok := strings.CutPrefix(attr, "type="); ok {
			return v
		}
	}
	return ""
}

func hasExporterType(typ string, outputs []string) bool {
	for _, o := range outputs {
		if exporterType(o) == typ {
			return true
		}
	}
	return false
}

// hasLocalExporter reports whether any output requests the local exporter.
func hasLocalExporter(outputs []string) bool {
	return hasExporterType("local", outputs)
}

// hasTarExporter reports whether any output requests the tar exporter.
func hasTarExporter(outputs []string) bool {
	return hasExporterType("tar", outputs)
}

// hasDockerExporter reports whether the image lands in the docker daemon,
// either through an explicit docker exporter or a load request.
func hasDockerExporter(outputs []string, load bool) bool {
	return load || hasExporterType("docker", outputs)
}
