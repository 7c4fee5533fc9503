package giveaway

import (
	stderrors "errors"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
	"github.com/PancyStudios/PancyCommunityBot/pkg/giveaway"
)

// userMessage turns a giveaway error into the reply shown to the user
func userMessage(err error) string {
	switch {
	case stderrors.Is(err, giveaway.ErrAlreadyEntered):
		return "⚠️ Ya estás participando en este sorteo."
	case stderrors.Is(err, database.ErrNotFound):
		return "❌ Sorteo no encontrado."
	case stderrors.Is(err, giveaway.ErrGiveawayEnded):
		return "❌ Este sorteo ya ha finalizado."
	case stderrors.Is(err, giveaway.ErrGiveawayActive):
		return "❌ No puedes hacer reroll de un sorteo activo. Finalízalo primero."
	case stderrors.Is(err, giveaway.ErrMissingRequiredRole):
		return "❌ No tienes ninguno de los roles requeridos para participar."
	case stderrors.Is(err, giveaway.ErrRequirementNotMet):
		return "❌ No cumples los requisitos de nivel o mensajes del servidor para participar."
	case stderrors.Is(err, giveaway.ErrPositionOutOfRange):
		return "❌ Posición inválida para este sorteo."
	case stderrors.Is(err, giveaway.ErrNoWinners):
		return "❌ Este sorteo todavía no tiene ganadores."
	case stderrors.Is(err, giveaway.ErrNoEligibleCandidates):
		return "❌ No hay participantes elegibles para el reroll."
	case stderrors.Is(err, giveaway.ErrPreviewNotFound):
		return "❌ La vista previa ha expirado. Crea el sorteo de nuevo."
	case stderrors.Is(err, giveaway.ErrPreviewForbidden):
		return "❌ Solo el anfitrión puede confirmar o cancelar este sorteo."
	case stderrors.Is(err, giveaway.ErrInvalidDuration):
		return "❌ Duración inválida. Usa por ejemplo 30m, 2h o 7d (mínimo 1 minuto, máximo 30 días)."
	case stderrors.Is(err, database.ErrStorageUnavailable):
		return "❌ La base de datos no está disponible. Inténtalo más tarde."
	}
	return "❌ Ocurrió un error inesperado con el sorteo."
}
