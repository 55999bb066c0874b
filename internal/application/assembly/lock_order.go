package assembly

import "sort"

// itemLockOrder devuelve los artículos sin repetir y en orden ascendente de id.
// Toda transacción de ensamble toca el stock en este orden: primero los lotes del artículo,
// luego su fila agregada.
func itemLockOrder(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
