package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrScanInProgress = errors.New("ya hay un escaneo en curso")
	ErrRecipientGone  = errors.New("destinatario inalcanzable o bloqueó al bot")
	ErrDeliveryFailed = errors.New("fallo transitorio al enviar el mensaje")
)
