package migration

import (
	"fmt"
	"strings"
)

type messageID int

const (
	msgExportDone messageID = iota
	msgExportFailed
	msgImportConfirm
	msgImportCancelled
	msgImportDone
	msgImportFailed
	msgInvalidFormat
	msgIncompatibleVersion
	msgBackupFailed
	msgRowsSkipped
	msgNoMetadata
	msgRevMismatch
	msgWriteFailed
)

var catalog = map[string]map[messageID]string{
	"es": {
		msgExportDone:          "Copia de seguridad exportada: %d registros en %s",
		msgExportFailed:        "Error al exportar los datos: %s",
		msgImportConfirm:       "Se reemplazarán todos tus datos actuales con:\n%s\n¿Deseas continuar?",
		msgImportCancelled:     "Importación cancelada",
		msgImportDone:          "Datos importados correctamente",
		msgImportFailed:        "Error al importar los datos: %s",
		msgInvalidFormat:       "El archivo no es una copia de seguridad válida de Habitus",
		msgIncompatibleVersion: "La versión del archivo (%s) no es compatible",
		msgBackupFailed:        "No se pudo crear la copia de seguridad previa: %s",
		msgRowsSkipped:         "Se omitieron %d filas con errores",
		msgNoMetadata:          "El archivo no tiene metadatos; se importará igualmente",
		msgRevMismatch:         "El contenido del archivo no coincide con su revisión registrada",
		msgWriteFailed:         "La importación falló al guardar %s",
	},
	"en": {
		msgExportDone:          "Backup exported: %d records to %s",
		msgExportFailed:        "Export failed: %s",
		msgImportConfirm:       "All your current data will be replaced with:\n%s\nContinue?",
		msgImportCancelled:     "Import cancelled",
		msgImportDone:          "Data imported successfully",
		msgImportFailed:        "Import failed: %s",
		msgInvalidFormat:       "The file is not a valid Habitus backup",
		msgIncompatibleVersion: "The file version (%s) is not compatible",
		msgBackupFailed:        "Could not create the safety backup: %s",
		msgRowsSkipped:         "%d rows with errors were skipped",
		msgNoMetadata:          "The file has no metadata; importing anyway",
		msgRevMismatch:         "The file content does not match its recorded revision",
		msgWriteFailed:         "Import failed while saving %s",
	},
}

var summaryLabels = map[string][]string{
	"es": {"Tareas", "Roles", "Objetivos", "Métricas", "Tareas completadas", "Check-in", "Ideas", "Ajustes"},
	"en": {"Tasks", "Roles", "Goals", "Metrics", "Completed tasks", "Check-in", "Ideas", "Settings"},
}

func message(lang string, id messageID, args ...any) string {
	msgs, ok := catalog[lang]
	if !ok {
		msgs = catalog["es"]
	}
	if len(args) == 0 {
		return msgs[id]
	}
	return fmt.Sprintf(msgs[id], args...)
}

// describeSummary renders counts as one "label: n" line per category.
func describeSummary(lang string, s Summary) string {
	labels, ok := summaryLabels[lang]
	if !ok {
		labels = summaryLabels["es"]
	}
	checkIn := 0
	if s.CheckIn {
		checkIn = 1
	}
	counts := []int{s.Tasks, s.Roles, s.Goals, s.Metrics, s.CompletedTasks, checkIn, s.Ideas, s.Settings}

	lines := make([]string, len(labels))
	for i, label := range labels {
		lines[i] = fmt.Sprintf("- %s: %d", label, counts[i])
	}
	return strings.Join(lines, "\n")
}
