package cart

// User-facing copy. The backend serves an Indonesian storefront; server
// messages take precedence, these are the client-side texts and fallbacks.
const (
	// RemovalPromptMessage is the confirmation text a UI should show when the
	// engine raises a removal prompt. The prompt must not auto-dismiss.
	RemovalPromptMessage = "Yakin ingin hapus produk dari keranjang?"

	msgItemNotFound         = "Produk tidak ditemukan di keranjang."
	msgStockOnlyFmt         = "Stok untuk produk ini hanya %d."
	msgQuantityInvalidFmt   = "Kuantitas tidak valid atau melebihi stok (%d)."
	msgQuantityUpdated      = "Kuantitas berhasil diupdate"
	msgUpdateQuantityFailed = "Gagal mengupdate kuantitas."
	msgItemRemoved          = "Produk berhasil dihapus dari keranjang."
	msgRemoveFailed         = "Gagal menghapus produk."
	msgVariantUnavailable   = "Varian tidak tersedia untuk produk ini."
	msgVariantUpdated       = "Varian berhasil diupdate!"
	msgVariantFailed        = "Gagal mengganti varian."
	msgAddItemFailed        = "Gagal menambahkan item ke keranjang"
	msgItemAdded            = "Produk berhasil ditambahkan ke keranjang."
)
