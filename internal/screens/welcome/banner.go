package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/coursely/internal/ui/theme"
)

const bannerArt = `
  ██████╗ ██████╗ ██╗   ██╗██████╗ ███████╗███████╗██╗  ██╗   ██╗
 ██╔════╝██╔═══██╗██║   ██║██╔══██╗██╔════╝██╔════╝██║  ╚██╗ ██╔╝
 ██║     ██║   ██║██║   ██║██████╔╝███████╗█████╗  ██║   ╚████╔╝
 ██║     ██║   ██║██║   ██║██╔══██╗╚════██║██╔══╝  ██║    ╚██╔╝
 ╚██████╗╚██████╔╝╚██████╔╝██║  ██║███████║███████╗███████╗██║
  ╚═════╝ ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝╚═╝`

const bannerCompact = "C O U R S E L Y"

// bannerMinWidth is the narrowest terminal that fits bannerArt.
const bannerMinWidth = 68

// RenderBanner returns the Coursely banner styled in the primary color,
// falling back to a single line on narrow terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
